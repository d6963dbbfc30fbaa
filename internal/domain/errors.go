package domain

import (
	"errors"
	"fmt"
	"time"
)

// Базовые ошибки предметной области. Все типизированные ошибки ниже
// раскрываются (Unwrap) в одну из них
var (
	ErrNotFound                 = errors.New("not found")
	ErrIllegalTransition        = errors.New("illegal transition")
	ErrSlotConflict             = errors.New("slot conflict")
	ErrDuplicateActiveRequest   = errors.New("duplicate active request")
	ErrVehicleAlreadyInWorkshop = errors.New("vehicle already in workshop")
	ErrPendingTasks             = errors.New("pending tasks")
	ErrValidation               = errors.New("validation error")
	ErrVehicleUnknown           = errors.New("vehicle unknown")
)

// NotFoundError сущность не найдена
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s id=%d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IllegalTransitionError действие недопустимо в текущем состоянии
type IllegalTransitionError struct {
	Entity string
	ID     int64
	From   string
	Action string
	Reason string // необязательное уточнение
}

func (e *IllegalTransitionError) Error() string {
	msg := fmt.Sprintf("%s id=%d: action %q not allowed from state %s", e.Entity, e.ID, e.Action, e.From)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// SlotConflictError подъёмник занят в выбранное время
// Повторяемая ошибка: клиент перезапрашивает слоты и выбирает другой
type SlotConflictError struct {
	ResourceID int64
	Start      time.Time
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("resource id=%d is already booked at %s", e.ResourceID, e.Start.Format(SlotTokenTimeFormat))
}

func (e *SlotConflictError) Unwrap() error { return ErrSlotConflict }

// DuplicateActiveRequestError у автомобиля уже есть заявка в работе
type DuplicateActiveRequestError struct {
	VehicleID int64
	Plate     string
}

func (e *DuplicateActiveRequestError) Error() string {
	return fmt.Sprintf("vehicle %s (id=%d) already has an active entry request", e.Plate, e.VehicleID)
}

func (e *DuplicateActiveRequestError) Unwrap() error { return ErrDuplicateActiveRequest }

// VehicleAlreadyInWorkshopError у автомобиля уже есть активное ингресо
type VehicleAlreadyInWorkshopError struct {
	VehicleID int64
	Plate     string
}

func (e *VehicleAlreadyInWorkshopError) Error() string {
	return fmt.Sprintf("vehicle %s (id=%d) already has an active intake", e.Plate, e.VehicleID)
}

func (e *VehicleAlreadyInWorkshopError) Unwrap() error { return ErrVehicleAlreadyInWorkshop }

// PendingTasksError ингресо нельзя завершить, пока есть незавершённые задачи
type PendingTasksError struct {
	BookingID int64
	Count     int
}

func (e *PendingTasksError) Error() string {
	return fmt.Sprintf("booking id=%d has %d unfinished task(s)", e.BookingID, e.Count)
}

func (e *PendingTasksError) Unwrap() error { return ErrPendingTasks }

// ValidationError некорректное поле во входных данных
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// VehicleUnknownError автомобиля нет в реестре автопарка
type VehicleUnknownError struct {
	Plate string
}

func (e *VehicleUnknownError) Error() string {
	return fmt.Sprintf("vehicle with plate %s is not registered", e.Plate)
}

func (e *VehicleUnknownError) Unwrap() error { return ErrVehicleUnknown }

// NewValidationError короткий конструктор
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
