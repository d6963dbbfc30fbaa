package gate

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// GateRepository интерфейс репозитория записей КПП
type GateRepository interface {
	Create(ctx context.Context, e *domain.GateEntry) (*domain.GateEntry, error)
	GetByID(ctx context.Context, id int64) (*domain.GateEntry, error)
	SetExit(ctx context.Context, id int64, exitedAt time.Time) error
}

// BookingRepository интерфейс репозитория ингресо
type BookingRepository interface {
	FindScheduledForGateLink(ctx context.Context, vehicleID int64, from time.Time) (*domain.Booking, error)
	LinkGateEntry(ctx context.Context, bookingID, gateEntryID int64) error
}

// FleetClient интерфейс реестра автопарка
type FleetClient interface {
	GetVehicleByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
