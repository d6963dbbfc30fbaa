package schedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// BookingRepository интерфейс репозитория ингресо
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetActiveByVehicle(ctx context.Context, vehicleID int64) (*domain.Booking, error)
	ListOccupying(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error)
}

// ResourceRepository интерфейс реестра подъёмников
type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
}

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	ListApprovedUnbooked(ctx context.Context, from, to time.Time) ([]*domain.EntryRequest, error)
}

// FleetClient интерфейс реестра автопарка
type FleetClient interface {
	GetVehicleByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
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
