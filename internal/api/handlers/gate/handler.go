package gate

import (
	"net/http"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopService/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopService/internal/service/gate/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

// Handler журнал КПП
type Handler struct {
	service GateService
	logger  Logger
}

func NewHandler(service GateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RecordEntry POST /api/v1/gate/entries
func (h *Handler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.RecordEntryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /gate/entries - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	entry, err := h.service.RecordEntry(r.Context(), &req, actor)
	if err != nil {
		h.fail(w, "POST /gate/entries", 0, err)
		return
	}

	h.logger.Info("POST /gate/entries - Entry recorded: entry_id=%d, plate=%s, guard_id=%d", entry.ID, entry.Plate, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, entry)
}

// RecordExit POST /api/v1/gate/entries/{entryId}/exit
func (h *Handler) RecordExit(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "entryId")
	if err != nil {
		h.logger.Warn("POST /gate/entries/{id}/exit - Invalid entry ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	entry, err := h.service.RecordExit(r.Context(), id, actor)
	if err != nil {
		h.fail(w, "POST /gate/entries/{id}/exit", id, err)
		return
	}

	h.logger.Info("POST /gate/entries/{id}/exit - Exit recorded: entry_id=%d, guard_id=%d", id, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, entry)
}

// Get GET /api/v1/gate/entries/{entryId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "entryId")
	if err != nil {
		h.logger.Warn("GET /gate/entries/{id} - Invalid entry ID: %v", err)
		handlers.RespondInvalidID(w)
		return
	}

	entry, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, "GET /gate/entries/{id}", id, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

func (h *Handler) fail(w http.ResponseWriter, route string, id int64, err error) {
	status := handlers.RespondDomainError(w, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s - Failed: entry_id=%d, error=%v", route, id, err)
		return
	}
	h.logger.Warn("%s - Rejected: entry_id=%d, reason=%v", route, id, err)
}
