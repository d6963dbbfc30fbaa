package approve_request

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/schedule_booking"
)

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.EntryRequest, error)
	Update(ctx context.Context, req *domain.EntryRequest) error
}

// Scheduler запись ингресо на слот (schedule_booking.UseCase)
type Scheduler interface {
	Schedule(ctx context.Context, in *schedule_booking.Intake) (*domain.Booking, error)
}

// Notifier асинхронная отправка уведомлений
type Notifier interface {
	Dispatch(n notificationservice.Notification) bool
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
