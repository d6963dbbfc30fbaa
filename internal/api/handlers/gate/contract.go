package gate

import (
	"context"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/service/gate/models"
)

type GateService interface {
	RecordEntry(ctx context.Context, req *models.RecordEntryRequest, actor domain.Actor) (*models.GateEntryResponse, error)
	RecordExit(ctx context.Context, id int64, actor domain.Actor) (*models.GateEntryResponse, error)
	GetByID(ctx context.Context, id int64) (*models.GateEntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
