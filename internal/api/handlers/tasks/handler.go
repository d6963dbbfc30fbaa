package tasks

import (
	"context"
	"net/http"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopService/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/service/tasks/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

// Handler задачи ингресо и их журнал
type Handler struct {
	service TaskService
	logger  Logger
}

func NewHandler(service TaskService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/bookings/{bookingId}/tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/tasks - Invalid booking ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateTaskRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/tasks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	task, err := h.service.Create(r.Context(), bookingID, &req, actor)
	if err != nil {
		h.fail(w, "POST /bookings/{id}/tasks", bookingID, err)
		return
	}

	h.logger.Info("POST /bookings/{id}/tasks - Task created: task_id=%d, booking_id=%d", task.ID, bookingID)
	handlers.RespondJSON(w, http.StatusCreated, task)
}

// ListByBooking GET /api/v1/bookings/{bookingId}/tasks
func (h *Handler) ListByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/tasks - Invalid booking ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	result, err := h.service.ListByBooking(r.Context(), bookingID)
	if err != nil {
		h.fail(w, "GET /bookings/{id}/tasks", bookingID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Start POST /api/v1/tasks/{taskId}/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "POST /tasks/{id}/start", h.service.Start)
}

// Pause POST /api/v1/tasks/{taskId}/pause
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "POST /tasks/{id}/pause", h.service.Pause)
}

// Resume POST /api/v1/tasks/{taskId}/resume
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "POST /tasks/{id}/resume", h.service.Resume)
}

// Cancel POST /api/v1/tasks/{taskId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "POST /tasks/{id}/cancel", h.service.Cancel)
}

// Complete POST /api/v1/tasks/{taskId}/complete
// Тело необязательно: {"spentMinutes": 45} переопределяет расчёт по времени
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteTaskRequest
	if err := handlers.DecodeOptionalJSON(r, &req); err != nil {
		h.logger.Warn("POST /tasks/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	h.change(w, r, "POST /tasks/{id}/complete", func(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error) {
		return h.service.Complete(ctx, id, &req, actor)
	})
}

// Edit PATCH /api/v1/tasks/{taskId}
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var req models.EditTaskRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /tasks/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	h.change(w, r, "PATCH /tasks/{id}", func(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error) {
		return h.service.EditFields(ctx, id, &req, actor)
	})
}

// Comment POST /api/v1/tasks/{taskId}/comments
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	taskID, err := handlers.PathID(r, "taskId")
	if err != nil {
		h.logger.Warn("POST /tasks/{id}/comments - Invalid task ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CommentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /tasks/{id}/comments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	entry, err := h.service.AddComment(r.Context(), taskID, &req, actor)
	if err != nil {
		h.fail(w, "POST /tasks/{id}/comments", taskID, err)
		return
	}

	h.logger.Info("POST /tasks/{id}/comments - Comment added: task_id=%d, entry_id=%d", taskID, entry.ID)
	handlers.RespondJSON(w, http.StatusCreated, entry)
}

// History GET /api/v1/tasks/{taskId}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	taskID, err := handlers.PathID(r, "taskId")
	if err != nil {
		h.logger.Warn("GET /tasks/{id}/history - Invalid task ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	result, err := h.service.History(r.Context(), taskID)
	if err != nil {
		h.fail(w, "GET /tasks/{id}/history", taskID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

type changeFunc func(ctx context.Context, id int64, actor domain.Actor) (*models.TaskResponse, error)

func (h *Handler) change(w http.ResponseWriter, r *http.Request, route string, fn changeFunc) {
	taskID, err := handlers.PathID(r, "taskId")
	if err != nil {
		h.logger.Warn("%s - Invalid task ID: %v", route, err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	task, err := fn(r.Context(), taskID, actor)
	if err != nil {
		h.fail(w, route, taskID, err)
		return
	}

	h.logger.Info("%s - Done: task_id=%d, status=%s, user_id=%d", route, taskID, task.Status, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, task)
}

func (h *Handler) fail(w http.ResponseWriter, route string, id int64, err error) {
	status := handlers.RespondDomainError(w, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s - Failed: id=%d, error=%v", route, id, err)
		return
	}
	h.logger.Warn("%s - Rejected: id=%d, reason=%v", route, id, err)
}
