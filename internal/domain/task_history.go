package domain

import (
	"fmt"
	"strconv"
	"time"
)

// TaskChangeKind вид записи журнала изменений задачи
type TaskChangeKind string

const (
	ChangeCreation     TaskChangeKind = "CREACION"
	ChangeAssignment   TaskChangeKind = "ASIGNACION"
	ChangeStatus       TaskChangeKind = "CAMBIO_ESTADO"
	ChangePriority     TaskChangeKind = "CAMBIO_PRIORIDAD"
	ChangeModification TaskChangeKind = "MODIFICACION"
	ChangeComment      TaskChangeKind = "COMENTARIO"
)

// TaskHistoryEntry неизменяемая запись журнала задачи
type TaskHistoryEntry struct {
	ID          int64
	TaskID      int64
	Kind        TaskChangeKind
	OldValue    *string
	NewValue    *string
	Description string
	ActorID     int64
	CreatedAt   time.Time
}

// CreationEntries записи при создании задачи: CREACION и, если назначен механик, ASIGNACION
func CreationEntries(task *Task, actorID int64, at time.Time) []*TaskHistoryEntry {
	entries := []*TaskHistoryEntry{{
		TaskID:      task.ID,
		Kind:        ChangeCreation,
		NewValue:    strPtr(string(task.Status)),
		Description: "Tarea creada: " + task.Title,
		ActorID:     actorID,
		CreatedAt:   at,
	}}

	if task.MechanicID != nil {
		entries = append(entries, assignmentEntry(task.ID, nil, task.MechanicID, actorID, at))
	}

	return entries
}

// DiffTask сравнивает снимок prev с новой версией next и возвращает по одной записи
// на каждое изменённое поле в порядке: статус, приоритет, механик, название/описание.
// Изменения прочих полей (заметки, запчасти, оценка времени) в журнал не попадают
func DiffTask(prev, next *Task, actorID int64, at time.Time) []*TaskHistoryEntry {
	var entries []*TaskHistoryEntry

	if prev.Status != next.Status {
		entries = append(entries, &TaskHistoryEntry{
			TaskID:      next.ID,
			Kind:        ChangeStatus,
			OldValue:    strPtr(string(prev.Status)),
			NewValue:    strPtr(string(next.Status)),
			Description: fmt.Sprintf("Estado cambiado de %s a %s", prev.Status, next.Status),
			ActorID:     actorID,
			CreatedAt:   at,
		})
	}

	if prev.Priority != next.Priority {
		entries = append(entries, &TaskHistoryEntry{
			TaskID:      next.ID,
			Kind:        ChangePriority,
			OldValue:    strPtr(string(prev.Priority)),
			NewValue:    strPtr(string(next.Priority)),
			Description: fmt.Sprintf("Prioridad cambiada de %s a %s", prev.Priority, next.Priority),
			ActorID:     actorID,
			CreatedAt:   at,
		})
	}

	if !equalInt64Ptr(prev.MechanicID, next.MechanicID) {
		entries = append(entries, assignmentEntry(next.ID, prev.MechanicID, next.MechanicID, actorID, at))
	}

	if prev.Title != next.Title || !equalStringPtr(prev.Description, next.Description) {
		entries = append(entries, &TaskHistoryEntry{
			TaskID:      next.ID,
			Kind:        ChangeModification,
			OldValue:    strPtr(prev.Title),
			NewValue:    strPtr(next.Title),
			Description: "Título o descripción modificados",
			ActorID:     actorID,
			CreatedAt:   at,
		})
	}

	return entries
}

// CommentEntry запись-комментарий, задача при этом не меняется
func CommentEntry(taskID int64, text string, actorID int64, at time.Time) *TaskHistoryEntry {
	return &TaskHistoryEntry{
		TaskID:      taskID,
		Kind:        ChangeComment,
		Description: text,
		ActorID:     actorID,
		CreatedAt:   at,
	}
}

func assignmentEntry(taskID int64, from, to *int64, actorID int64, at time.Time) *TaskHistoryEntry {
	description := "Mecánico desasignado"
	if to != nil {
		description = fmt.Sprintf("Asignada a mecánico %d", *to)
	}

	return &TaskHistoryEntry{
		TaskID:      taskID,
		Kind:        ChangeAssignment,
		OldValue:    idString(from),
		NewValue:    idString(to),
		Description: description,
		ActorID:     actorID,
		CreatedAt:   at,
	}
}

func idString(id *int64) *string {
	if id == nil {
		return nil
	}
	return strPtr(strconv.FormatInt(*id, 10))
}

func strPtr(s string) *string {
	return &s
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
