package domain

import "time"

// Pause интервал приостановки работ по ингресо
type Pause struct {
	ID          int64
	BookingID   int64
	Reason      string
	Description *string
	StartedAt   time.Time
	EndedAt     *time.Time
	RecordedBy  int64
}

// IsOpen пауза ещё не закрыта
func (p *Pause) IsOpen() bool {
	return p.EndedAt == nil
}

// Close закрывает паузу; конец не может быть раньше начала
func (p *Pause) Close(at time.Time) {
	if at.Before(p.StartedAt) {
		at = p.StartedAt
	}
	p.EndedAt = &at
}

// DurationMinutes длительность закрытой паузы
func (p *Pause) DurationMinutes() (int, bool) {
	if p.EndedAt == nil {
		return 0, false
	}
	return minutesBetween(p.StartedAt, *p.EndedAt), true
}
