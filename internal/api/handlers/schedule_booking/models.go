package schedule_booking

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	intakeModels "github.com/m04kA/SMC-WorkshopService/internal/service/intake/models"
	scheduleBooking "github.com/m04kA/SMC-WorkshopService/internal/usecase/schedule_booking"
)

// ScheduleBookingRequest HTTP request model
// Слот задаётся либо slotToken, либо scheduledAt с необязательным resourceId
type ScheduleBookingRequest struct {
	Plate        string     `json:"plate"`
	SlotToken    *string    `json:"slotToken,omitempty"` // "2026-03-02T10:00|1"
	ResourceID   *int64     `json:"resourceId,omitempty"`
	ScheduledAt  *time.Time `json:"scheduledAt,omitempty"`
	DriverID     *int64     `json:"driverId,omitempty"`
	Reason       string     `json:"reason"`
	Notes        *string    `json:"notes,omitempty"`
	RequiredPart *string    `json:"requiredPart,omitempty"`
	OdometerKm   *int       `json:"odometerKm,omitempty"`
}

// ScheduleBookingResponse HTTP response model
type ScheduleBookingResponse struct {
	Booking *intakeModels.BookingResponse `json:"booking"`
	Token   string                        `json:"token"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ScheduleBookingRequest) ToUseCaseRequest(actor domain.Actor) *scheduleBooking.Request {
	return &scheduleBooking.Request{
		Plate:        r.Plate,
		SlotToken:    r.SlotToken,
		ResourceID:   r.ResourceID,
		ScheduledAt:  r.ScheduledAt,
		DriverID:     r.DriverID,
		Reason:       r.Reason,
		Notes:        r.Notes,
		RequiredPart: r.RequiredPart,
		OdometerKm:   r.OdometerKm,
		Actor:        actor,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *scheduleBooking.Response) *ScheduleBookingResponse {
	return &ScheduleBookingResponse{
		Booking: intakeModels.FromDomainBooking(resp.Booking, nil),
		Token:   resp.Token,
	}
}
