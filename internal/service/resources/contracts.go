package resources

import (
	"context"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// ResourceRepository интерфейс реестра подъёмников
type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) (*domain.Resource, error)
	List(ctx context.Context, category *domain.ResourceCategory, activeOnly bool) ([]*domain.Resource, error)
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
