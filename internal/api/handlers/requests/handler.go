package requests

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopService/internal/api/middleware"
	requestsService "github.com/m04kA/SMC-WorkshopService/internal/service/requests"
	"github.com/m04kA/SMC-WorkshopService/internal/service/requests/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "заявку может отменить только подавший её водитель"
)

// Handler заявки водителей на въезд (одобрение см. approve_request)
type Handler struct {
	service RequestService
	logger  Logger
}

func NewHandler(service RequestService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ListPending GET /api/v1/requests/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListPending(r.Context())
	if err != nil {
		h.fail(w, "GET /requests/pending", 0, err)
		return
	}

	h.logger.Info("GET /requests/pending - Pending requests retrieved: count=%d", len(result.Requests))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get GET /api/v1/requests/{requestId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "requestId")
	if err != nil {
		h.logger.Warn("GET /requests/{id} - Invalid request ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	result, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, "GET /requests/{id}", id, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Reject POST /api/v1/requests/{requestId}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "requestId")
	if err != nil {
		h.logger.Warn("POST /requests/{id}/reject - Invalid request ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.RejectRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /requests/{id}/reject - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Reject(r.Context(), id, &req, actor)
	if err != nil {
		h.fail(w, "POST /requests/{id}/reject", id, err)
		return
	}

	h.logger.Info("POST /requests/{id}/reject - Request rejected: request_id=%d, responder_id=%d", id, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Cancel POST /api/v1/requests/{requestId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "requestId")
	if err != nil {
		h.logger.Warn("POST /requests/{id}/cancel - Invalid request ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.CancelByDriver(r.Context(), id, actor)
	if err != nil {
		if errors.Is(err, requestsService.ErrAccessDenied) {
			h.logger.Warn("POST /requests/{id}/cancel - Access denied: request_id=%d, user_id=%d", id, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		h.fail(w, "POST /requests/{id}/cancel", id, err)
		return
	}

	h.logger.Info("POST /requests/{id}/cancel - Request cancelled by driver: request_id=%d, driver_id=%d", id, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, route string, id int64, err error) {
	status := handlers.RespondDomainError(w, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s - Failed: request_id=%d, error=%v", route, id, err)
		return
	}
	h.logger.Warn("%s - Rejected: request_id=%d, reason=%v", route, id, err)
}
