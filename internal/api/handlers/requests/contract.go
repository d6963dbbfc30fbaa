package requests

import (
	"context"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/service/requests/models"
)

type RequestService interface {
	ListPending(ctx context.Context) (*models.EntryRequestListResponse, error)
	GetByID(ctx context.Context, id int64) (*models.EntryRequestResponse, error)
	Reject(ctx context.Context, id int64, req *models.RejectRequest, actor domain.Actor) (*models.EntryRequestResponse, error)
	CancelByDriver(ctx context.Context, id int64, actor domain.Actor) (*models.EntryRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
