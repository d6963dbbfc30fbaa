package bookings

import (
	"context"
	"net/http"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopService/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/service/intake/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

// Handler жизненный цикл ингресо
type Handler struct {
	service IntakeService
	logger  Logger
}

func NewHandler(service IntakeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Get GET /api/v1/bookings/{bookingId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, "GET /bookings/{id}", id, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, booking)
}

// CheckIn POST /api/v1/bookings/{bookingId}/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if err := handlers.DecodeOptionalJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/check-in - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	h.transition(w, r, "check-in", func(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
		return h.service.CheckIn(ctx, id, &req, actor)
	})
}

// Pause POST /api/v1/bookings/{bookingId}/pause
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	var req models.PauseRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/pause - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	h.transition(w, r, "pause", func(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
		return h.service.Pause(ctx, id, &req, actor)
	})
}

// Resume POST /api/v1/bookings/{bookingId}/resume
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "resume", h.service.Resume)
}

// Terminate POST /api/v1/bookings/{bookingId}/terminate
func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "terminate", h.service.Terminate)
}

// Withdraw POST /api/v1/bookings/{bookingId}/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "withdraw", h.service.Withdraw)
}

// Cancel POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", h.service.Cancel)
}

type transitionFunc func(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, fn transitionFunc) {
	route := "POST /bookings/{id}/" + action

	id, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", route, err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := fn(r.Context(), id, actor)
	if err != nil {
		h.fail(w, route, id, err)
		return
	}

	h.logger.Info("%s - Done: booking_id=%d, status=%s, user_id=%d", route, id, booking.Status, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}

func (h *Handler) fail(w http.ResponseWriter, route string, id int64, err error) {
	status := handlers.RespondDomainError(w, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s - Failed: booking_id=%d, error=%v", route, id, err)
		return
	}
	h.logger.Warn("%s - Rejected: booking_id=%d, reason=%v", route, id, err)
}
