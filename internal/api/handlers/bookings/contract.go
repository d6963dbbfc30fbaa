package bookings

import (
	"context"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/service/intake/models"
)

type IntakeService interface {
	GetByID(ctx context.Context, id int64) (*models.BookingResponse, error)
	CheckIn(ctx context.Context, id int64, req *models.CheckInRequest, actor domain.Actor) (*models.BookingResponse, error)
	Pause(ctx context.Context, id int64, req *models.PauseRequest, actor domain.Actor) (*models.BookingResponse, error)
	Resume(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error)
	Terminate(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error)
	Withdraw(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error)
	Cancel(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
