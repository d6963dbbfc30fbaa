package tasks

import (
	"context"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/service/tasks/models"
)

type TaskService interface {
	Create(ctx context.Context, bookingID int64, req *models.CreateTaskRequest, actor domain.Actor) (*models.TaskResponse, error)
	Start(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error)
	Pause(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error)
	Resume(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error)
	Complete(ctx context.Context, id int64, req *models.CompleteTaskRequest, actor domain.Actor) (*models.TaskResponse, error)
	Cancel(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error)
	EditFields(ctx context.Context, id int64, req *models.EditTaskRequest, actor domain.Actor) (*models.TaskResponse, error)
	AddComment(ctx context.Context, id int64, req *models.CommentRequest, actor domain.Actor) (*models.HistoryEntryResponse, error)
	ListByBooking(ctx context.Context, bookingID int64) (*models.TaskListResponse, error)
	History(ctx context.Context, taskID int64) (*models.HistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
