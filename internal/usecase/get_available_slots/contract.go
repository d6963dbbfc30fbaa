package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// ResourceRepository интерфейс реестра подъёмников
type ResourceRepository interface {
	List(ctx context.Context, category *domain.ResourceCategory, activeOnly bool) ([]*domain.Resource, error)
}

// BookingRepository интерфейс репозитория ингресо
type BookingRepository interface {
	ListOccupying(ctx context.Context, resourceIDs []int64, from, to time.Time) ([]*domain.Booking, error)
}

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	ListApprovedUnbooked(ctx context.Context, from, to time.Time) ([]*domain.EntryRequest, error)
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
