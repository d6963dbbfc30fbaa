package domain

import "time"

// TaskStatus статус задачи ремонта
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDIENTE"
	TaskInProgress TaskStatus = "EN_PROCESO"
	TaskPaused     TaskStatus = "PAUSADA"
	TaskCompleted  TaskStatus = "COMPLETADA"
	TaskCancelled  TaskStatus = "CANCELADA"
)

// TaskPriority приоритет задачи
type TaskPriority string

const (
	PriorityLow    TaskPriority = "BAJA"
	PriorityMedium TaskPriority = "MEDIA"
	PriorityHigh   TaskPriority = "ALTA"
	PriorityUrgent TaskPriority = "URGENTE"
)

// IsValid проверяет, что приоритет известен
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

var taskTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskPending: {
		TaskInProgress: true,
		TaskCancelled:  true,
	},
	TaskInProgress: {
		TaskPaused:    true,
		TaskCompleted: true,
		TaskCancelled: true,
	},
	TaskPaused: {
		TaskInProgress: true,
		TaskCancelled:  true,
	},
}

// CanTransitionTask допустим ли переход задачи from -> to
func CanTransitionTask(from, to TaskStatus) bool {
	return taskTransitions[from][to]
}

// Task задача ремонта в рамках ингресо
type Task struct {
	ID               int64
	BookingID        int64
	Title            string
	Description      *string
	MechanicID       *int64
	Status           TaskStatus
	Priority         TaskPriority
	EstimatedMinutes *int
	SpentMinutes     *int
	PartsUsed        *string
	Notes            *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsFinished задача завершена или отменена
func (t *Task) IsFinished() bool {
	return t.Status == TaskCompleted || t.Status == TaskCancelled
}

// ElapsedMinutes минуты работы над задачей: до завершения или до now,
// если задача ещё идёт. Не начатая задача даёт 0
func (t *Task) ElapsedMinutes(now time.Time) int {
	if t.StartedAt == nil {
		return 0
	}
	end := now
	if t.CompletedAt != nil {
		end = *t.CompletedAt
	}
	d := end.Sub(*t.StartedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// PercentTime доля затраченного времени от оценки в процентах; без оценки 0
func (t *Task) PercentTime(now time.Time) int {
	if t.EstimatedMinutes == nil || *t.EstimatedMinutes <= 0 {
		return 0
	}
	return t.ElapsedMinutes(now) * 100 / *t.EstimatedMinutes
}

// Clone глубокая копия (снимок для сравнения перед сохранением)
func (t *Task) Clone() *Task {
	c := *t
	c.Description = cloneString(t.Description)
	c.PartsUsed = cloneString(t.PartsUsed)
	c.Notes = cloneString(t.Notes)
	if t.MechanicID != nil {
		v := *t.MechanicID
		c.MechanicID = &v
	}
	if t.EstimatedMinutes != nil {
		v := *t.EstimatedMinutes
		c.EstimatedMinutes = &v
	}
	if t.SpentMinutes != nil {
		v := *t.SpentMinutes
		c.SpentMinutes = &v
	}
	if t.StartedAt != nil {
		v := *t.StartedAt
		c.StartedAt = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}

// TransitionTo переводит задачу в новый статус с побочными эффектами:
// первый старт фиксирует StartedAt, завершение фиксирует CompletedAt и,
// если время не задано явно, считает SpentMinutes от StartedAt
func (t *Task) TransitionTo(to TaskStatus, at time.Time, spentOverride *int) error {
	if !CanTransitionTask(t.Status, to) {
		return &IllegalTransitionError{
			Entity: "task",
			ID:     t.ID,
			From:   string(t.Status),
			Action: string(to),
		}
	}

	switch to {
	case TaskInProgress:
		if t.StartedAt == nil {
			t.StartedAt = &at
		}
	case TaskCompleted:
		t.CompletedAt = &at
		if spentOverride != nil {
			v := *spentOverride
			t.SpentMinutes = &v
		} else if t.StartedAt != nil {
			spent := minutesBetween(*t.StartedAt, at)
			t.SpentMinutes = &spent
		}
	}

	t.Status = to
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
