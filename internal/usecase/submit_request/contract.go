package submit_request

import (
	"context"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	Create(ctx context.Context, req *domain.EntryRequest) (*domain.EntryRequest, error)
	GetActiveByVehicle(ctx context.Context, vehicleID int64) (*domain.EntryRequest, error)
}

// BookingRepository интерфейс репозитория ингресо
type BookingRepository interface {
	GetActiveByVehicle(ctx context.Context, vehicleID int64) (*domain.Booking, error)
}

// FleetClient интерфейс реестра автопарка
type FleetClient interface {
	GetVehicleByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
