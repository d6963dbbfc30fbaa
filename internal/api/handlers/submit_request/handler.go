package submit_request

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
	useCase SubmitRequestUseCase
	logger  Logger
}

func NewHandler(useCase SubmitRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /requests - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req SubmitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /requests - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor))
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /requests - Failed to submit request: plate=%s, driver_id=%d, error=%v", req.Plate, actor.ID, err)
		} else {
			h.logger.Warn("POST /requests - Rejected: plate=%s, driver_id=%d, reason=%v", req.Plate, actor.ID, err)
		}
		return
	}

	h.logger.Info("POST /requests - Request submitted successfully: request_id=%d, plate=%s, driver_id=%d",
		result.Request.ID, result.Request.VehiclePlate, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result, time.Now()))
}
