package tasks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
)

// TaskRepository интерфейс репозитория задач и их журнала
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Task, error)
	AppendHistory(ctx context.Context, entries []*domain.TaskHistoryEntry) error
	ListHistory(ctx context.Context, taskID int64) ([]*domain.TaskHistoryEntry, error)
}

// BookingRepository интерфейс репозитория ингресо
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
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
