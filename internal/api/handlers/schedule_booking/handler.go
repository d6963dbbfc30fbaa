package schedule_booking

import (
	"net/http"

	"github.com/m04kA/SMC-WorkshopService/internal/api/handlers"
	"github.com/m04kA/SMC-WorkshopService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase ScheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase ScheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ScheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor))
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /bookings - Failed to schedule booking: plate=%s, user_id=%d, error=%v", req.Plate, actor.ID, err)
		} else {
			h.logger.Warn("POST /bookings - Rejected: plate=%s, user_id=%d, reason=%v", req.Plate, actor.ID, err)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking scheduled successfully: booking_id=%d, plate=%s, token=%s",
		result.Booking.ID, result.Booking.VehiclePlate, result.Token)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
