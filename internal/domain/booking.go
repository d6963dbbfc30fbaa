package domain

import (
	"strings"
	"time"
)

// BookingStatus статус ингресо (визита автомобиля в мастерскую)
type BookingStatus string

const (
	BookingScheduled  BookingStatus = "PROGRAMADO"
	BookingInProgress BookingStatus = "EN_PROCESO"
	BookingPaused     BookingStatus = "EN_PAUSA"
	BookingFinished   BookingStatus = "TERMINADO"
	BookingWithdrawn  BookingStatus = "RETIRADO"
	BookingCancelled  BookingStatus = "CANCELADO"
)

// BookingAction действие жизненного цикла ингресо
type BookingAction string

const (
	ActionCheckIn   BookingAction = "check_in"
	ActionPause     BookingAction = "pause"
	ActionResume    BookingAction = "resume"
	ActionTerminate BookingAction = "terminate"
	ActionWithdraw  BookingAction = "withdraw"
	ActionCancel    BookingAction = "cancel"
)

// bookingTransitions таблица допустимых переходов: состояние -> действие -> новое состояние
var bookingTransitions = map[BookingStatus]map[BookingAction]BookingStatus{
	BookingScheduled: {
		ActionCheckIn: BookingInProgress,
		ActionCancel:  BookingCancelled,
	},
	BookingInProgress: {
		ActionPause:     BookingPaused,
		ActionTerminate: BookingFinished,
	},
	BookingPaused: {
		ActionResume: BookingInProgress,
	},
	BookingFinished: {
		ActionWithdraw: BookingWithdrawn,
	},
}

// NextBookingStatus возвращает состояние после действия
func NextBookingStatus(from BookingStatus, action BookingAction) (BookingStatus, bool) {
	next, ok := bookingTransitions[from][action]
	return next, ok
}

// IsValid проверяет, что статус известен
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingScheduled, BookingInProgress, BookingPaused, BookingFinished, BookingWithdrawn, BookingCancelled:
		return true
	}
	return false
}

// Booking ингресо: визит автомобиля в мастерскую, привязанный к подъёмнику и времени
type Booking struct {
	ID              int64
	VehicleID       int64
	VehiclePlate    string
	ResourceID      *int64
	DriverID        *int64
	ScheduledAt     time.Time
	DurationMinutes int
	ArrivedAt       *time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
	Status          BookingStatus
	Reason          string
	Notes           *string
	RequiredPart    *string
	OdometerKm      *int
	ScheduledBy     *int64
	SupervisorID    *int64
	GateEntryID     *int64
	RequestID       *int64 // не хранится в таблице, заполняется по связанной заявке

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduledEnd конец занимаемого окна
func (b *Booking) ScheduledEnd() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsActive автомобиль находится в мастерской (или ожидается)
func (b *Booking) IsActive() bool {
	for _, s := range ActiveBookingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// OccupiesResource ингресо занимает свой подъёмник
func (b *Booking) OccupiesResource() bool {
	return b.ResourceID != nil && (b.Status == BookingScheduled || b.Status == BookingInProgress)
}

// Overlaps пересекается ли окно ингресо с [start, end)
// Строгие неравенства: смежные интервалы не пересекаются
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.ScheduledAt.Before(end) && b.ScheduledEnd().After(start)
}

// HasGateEntry зафиксирован ли въезд автомобиля на КПП
func (b *Booking) HasGateEntry() bool {
	return b.GateEntryID != nil
}

// Apply переводит ингресо в новое состояние или возвращает IllegalTransitionError
// Сущность не изменяется при ошибке
func (b *Booking) Apply(action BookingAction) error {
	next, ok := NextBookingStatus(b.Status, action)
	if !ok {
		return &IllegalTransitionError{
			Entity: "booking",
			ID:     b.ID,
			From:   string(b.Status),
			Action: string(action),
		}
	}
	b.Status = next
	return nil
}

// TotalDurationMinutes минуты от начала до завершения работ
func (b *Booking) TotalDurationMinutes() (int, bool) {
	if b.StartedAt == nil || b.FinishedAt == nil {
		return 0, false
	}
	return minutesBetween(*b.StartedAt, *b.FinishedAt), true
}

// BookingMetrics производные показатели длительности ингресо
type BookingMetrics struct {
	TotalDurationMinutes *int
	PauseMinutes         int
	EffectiveMinutes     *int
}

// ComputeBookingMetrics считает длительности; открытые паузы не учитываются
func ComputeBookingMetrics(b *Booking, pauses []*Pause) BookingMetrics {
	var m BookingMetrics

	for _, p := range pauses {
		if d, ok := p.DurationMinutes(); ok {
			m.PauseMinutes += d
		}
	}

	if total, ok := b.TotalDurationMinutes(); ok {
		effective := total - m.PauseMinutes
		if effective < 0 {
			effective = 0
		}
		m.TotalDurationMinutes = &total
		m.EffectiveMinutes = &effective
	}

	return m
}

// AppendNote дописывает строку "[dd/mm/YYYY HH:MM] текст" к существующим заметкам
func AppendNote(existing *string, text string, at time.Time) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return existing
	}

	line := "[" + at.Format(NotesTimestampFormat) + "] " + text
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return &line
	}

	joined := *existing + "\n" + line
	return &joined
}

func minutesBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
