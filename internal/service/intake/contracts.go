package intake

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
)

// BookingRepository интерфейс репозитория ингресо
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	ListOccupying(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error)
}

// PauseRepository интерфейс репозитория пауз
type PauseRepository interface {
	Create(ctx context.Context, p *domain.Pause) (*domain.Pause, error)
	GetOpen(ctx context.Context, bookingID int64) (*domain.Pause, error)
	Close(ctx context.Context, id int64, endedAt time.Time) error
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Pause, error)
}

// TaskRepository интерфейс репозитория задач (только проверка завершения)
type TaskRepository interface {
	CountUnfinished(ctx context.Context, bookingID int64) (int, error)
}

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.EntryRequest, error)
	Update(ctx context.Context, req *domain.EntryRequest) error
}

// Notifier асинхронная отправка уведомлений
type Notifier interface {
	Dispatch(n notificationservice.Notification) bool
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
