package models

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// Request модели

// CreateTaskRequest новая задача в рамках ингресо
type CreateTaskRequest struct {
	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	MechanicID       *int64  `json:"mechanicId,omitempty"`
	Priority         *string `json:"priority,omitempty"` // по умолчанию MEDIA
	EstimatedMinutes *int    `json:"estimatedMinutes,omitempty"`
	PartsUsed        *string `json:"partsUsed,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// EditTaskRequest частичное изменение полей; nil означает "не менять",
// пустой приоритет тоже
type EditTaskRequest struct {
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	Priority         *string `json:"priority,omitempty"`
	MechanicID       *int64  `json:"mechanicId,omitempty"`
	UnassignMechanic bool    `json:"unassignMechanic,omitempty"`
	EstimatedMinutes *int    `json:"estimatedMinutes,omitempty"`
	PartsUsed        *string `json:"partsUsed,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// CompleteTaskRequest завершение задачи; SpentMinutes переопределяет расчёт по времени
type CompleteTaskRequest struct {
	SpentMinutes *int `json:"spentMinutes,omitempty"`
}

// CommentRequest комментарий к задаче
type CommentRequest struct {
	Text string `json:"text"`
}

// Response модели

// TaskResponse задача
type TaskResponse struct {
	ID               int64      `json:"id"`
	BookingID        int64      `json:"bookingId"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	MechanicID       *int64     `json:"mechanicId,omitempty"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	EstimatedMinutes *int       `json:"estimatedMinutes,omitempty"`
	SpentMinutes     *int       `json:"spentMinutes,omitempty"`
	PartsUsed        *string    `json:"partsUsed,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	ElapsedMinutes   int        `json:"elapsedMinutes"`
	PercentTime      int        `json:"percentTime"`
}

// TaskListResponse задачи ингресо
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// HistoryEntryResponse запись журнала
type HistoryEntryResponse struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"taskId"`
	Kind        string    `json:"kind"`
	OldValue    *string   `json:"oldValue,omitempty"`
	NewValue    *string   `json:"newValue,omitempty"`
	Description string    `json:"description"`
	ActorID     int64     `json:"actorId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HistoryResponse журнал задачи в хронологическом порядке
type HistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

// FromDomainTask конвертирует задачу; производные поля считаются на момент now
func FromDomainTask(t *domain.Task, now time.Time) *TaskResponse {
	return &TaskResponse{
		ID:               t.ID,
		BookingID:        t.BookingID,
		Title:            t.Title,
		Description:      t.Description,
		MechanicID:       t.MechanicID,
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		EstimatedMinutes: t.EstimatedMinutes,
		SpentMinutes:     t.SpentMinutes,
		PartsUsed:        t.PartsUsed,
		Notes:            t.Notes,
		StartedAt:        t.StartedAt,
		CompletedAt:      t.CompletedAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		ElapsedMinutes:   t.ElapsedMinutes(now),
		PercentTime:      t.PercentTime(now),
	}
}

// FromDomainTaskList конвертирует список задач
func FromDomainTaskList(items []*domain.Task, now time.Time) *TaskListResponse {
	out := &TaskListResponse{Tasks: make([]TaskResponse, 0, len(items))}
	for _, t := range items {
		out.Tasks = append(out.Tasks, *FromDomainTask(t, now))
	}
	return out
}

// FromDomainHistoryEntry конвертирует запись журнала
func FromDomainHistoryEntry(e *domain.TaskHistoryEntry) *HistoryEntryResponse {
	return &HistoryEntryResponse{
		ID:          e.ID,
		TaskID:      e.TaskID,
		Kind:        string(e.Kind),
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		Description: e.Description,
		ActorID:     e.ActorID,
		CreatedAt:   e.CreatedAt,
	}
}

// FromDomainHistory конвертирует журнал
func FromDomainHistory(items []*domain.TaskHistoryEntry) *HistoryResponse {
	out := &HistoryResponse{Entries: make([]HistoryEntryResponse, 0, len(items))}
	for _, e := range items {
		out.Entries = append(out.Entries, *FromDomainHistoryEntry(e))
	}
	return out
}
