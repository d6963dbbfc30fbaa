package domain

import (
	"fmt"
	"time"
)

// WorkshopSchedule параметры рабочей сетки мастерской
type WorkshopSchedule struct {
	Location           *time.Location
	DayStartHour       int
	DayEndHour         int // не включительно
	SlotMinutes        int
	DefaultDays        int
	OverdueRequestDays int
}

// DefaultWorkshopSchedule сетка по умолчанию: 08:00-18:00, часовые слоты, неделя вперёд
func DefaultWorkshopSchedule() WorkshopSchedule {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	return WorkshopSchedule{
		Location:           loc,
		DayStartHour:       DefaultDayStartHour,
		DayEndHour:         DefaultDayEndHour,
		SlotMinutes:        DefaultSlotDurationMinutes,
		DefaultDays:        DefaultScheduleDays,
		OverdueRequestDays: DefaultOverdueRequestDays,
	}
}

// Validate проверяет согласованность параметров
func (s WorkshopSchedule) Validate() error {
	if s.Location == nil {
		return fmt.Errorf("schedule: location is required")
	}
	if s.DayStartHour < 0 || s.DayEndHour > 24 || s.DayStartHour >= s.DayEndHour {
		return fmt.Errorf("schedule: invalid working hours [%d, %d)", s.DayStartHour, s.DayEndHour)
	}
	if s.SlotMinutes <= 0 {
		return fmt.Errorf("schedule: slot duration must be positive, got %d", s.SlotMinutes)
	}
	if s.DefaultDays < 1 || s.DefaultDays > MaxScheduleDays {
		return fmt.Errorf("schedule: default days must be in [1, %d], got %d", MaxScheduleDays, s.DefaultDays)
	}
	if s.OverdueRequestDays < 0 {
		return fmt.Errorf("schedule: overdue request days must not be negative")
	}
	return nil
}

// StartOfDay полночь дня t в зоне мастерской
func (s WorkshopSchedule) StartOfDay(t time.Time) time.Time {
	t = t.In(s.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.Location)
}

// OnGrid совпадает ли t с началом одного из слотов рабочей сетки
// Слот должен целиком помещаться в рабочие часы
func (s WorkshopSchedule) OnGrid(t time.Time) bool {
	t = t.In(s.Location)
	if t.Second() != 0 || t.Nanosecond() != 0 || s.SlotMinutes <= 0 {
		return false
	}

	minute := t.Hour()*60 + t.Minute()
	first := s.DayStartHour * 60
	if minute < first || minute+s.SlotMinutes > s.DayEndHour*60 {
		return false
	}
	return (minute-first)%s.SlotMinutes == 0
}
