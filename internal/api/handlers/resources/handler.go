package resources

import (
	"net/http"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopService/internal/service/resources/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingActive      = "поле active обязательно"
)

// Handler реестр подъёмников
type Handler struct {
	service ResourceService
	logger  Logger
}

func NewHandler(service ResourceService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/resources
// Query params: category (опционально), all=true включает выключенные подъёмники
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		result *models.ResourceListResponse
		err    error
	)

	query := r.URL.Query()
	if query.Get("all") == "true" {
		result, err = h.service.ListAll(r.Context())
	} else {
		var category *string
		if raw := query.Get("category"); raw != "" {
			category = &raw
		}
		result, err = h.service.ListActive(r.Context(), category)
	}
	if err != nil {
		h.fail(w, "GET /resources", err)
		return
	}

	h.logger.Info("GET /resources - Resources retrieved: count=%d", len(result.Resources))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// SetActive PATCH /api/v1/resources/{resourceId}/active
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "resourceId")
	if err != nil {
		h.logger.Warn("PATCH /resources/{id}/active - Invalid resource ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	var req models.SetActiveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /resources/{id}/active - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.Active == nil {
		handlers.RespondBadRequest(w, msgMissingActive)
		return
	}

	result, err := h.service.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		h.fail(w, "PATCH /resources/{id}/active", err)
		return
	}

	h.logger.Info("PATCH /resources/{id}/active - Resource updated: resource_id=%d, active=%t", id, result.Active)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) fail(w http.ResponseWriter, route string, err error) {
	status := handlers.RespondDomainError(w, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s - Failed: error=%v", route, err)
		return
	}
	h.logger.Warn("%s - Rejected: %v", route, err)
}
