package approve_request

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase ApproveRequestUseCase
	logger  Logger
}

func NewHandler(useCase ApproveRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/requests/{requestId}/approve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID, err := handlers.PathID(r, "requestId")
	if err != nil {
		h.logger.Warn("POST /requests/{id}/approve - Invalid request ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /requests/{id}/approve - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ApproveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /requests/{id}/approve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(requestID, actor))
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /requests/{id}/approve - Failed to approve: request_id=%d, error=%v", requestID, err)
		} else {
			h.logger.Warn("POST /requests/{id}/approve - Rejected: request_id=%d, reason=%v", requestID, err)
		}
		return
	}

	h.logger.Info("POST /requests/{id}/approve - Request approved: request_id=%d, booking_id=%d, approver_id=%d",
		requestID, result.Booking.ID, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result, time.Now()))
}
