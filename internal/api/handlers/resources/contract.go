package resources

import (
	"context"

	"github.com/m04kA/SMC-WorkshopService/internal/service/resources/models"
)

type ResourceService interface {
	ListActive(ctx context.Context, category *string) (*models.ResourceListResponse, error)
	ListAll(ctx context.Context) (*models.ResourceListResponse, error)
	SetActive(ctx context.Context, id int64, active bool) (*models.ResourceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
