package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
)

const (
	msgInvalidDays       = "некорректное количество дней"
	msgInvalidResourceID = "некорректный ID подъёмника"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots
// Query params: days, category, resourceId (все опциональны)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	useCaseReq, err := ToUseCaseRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /slots - Invalid query: %v", err)
		switch {
		case errors.Is(err, errInvalidResourceID):
			handlers.RespondBadRequest(w, msgInvalidResourceID)
		default:
			handlers.RespondBadRequest(w, msgInvalidDays)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("GET /slots - Failed to build slot grid: error=%v", err)
		} else {
			h.logger.Warn("GET /slots - Rejected: %v", err)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /slots - Slots retrieved successfully: days=%d, free=%d", len(response.Days), response.FreeSlots)
	handlers.RespondJSON(w, http.StatusOK, response)
}
