package approve_request

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	intakeModels "github.com/m04kA/SMC-WorkshopService/internal/service/intake/models"
	requestModels "github.com/m04kA/SMC-WorkshopService/internal/service/requests/models"
	approveRequest "github.com/m04kA/SMC-WorkshopService/internal/usecase/approve_request"
)

// ApproveRequest HTTP request model
type ApproveRequest struct {
	SlotToken    string  `json:"slotToken"`
	Reason       *string `json:"reason,omitempty"`
	RequiredPart *string `json:"requiredPart,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	OdometerKm   *int    `json:"odometerKm,omitempty"`
}

// ApproveResponse HTTP response model
type ApproveResponse struct {
	Request *requestModels.EntryRequestResponse `json:"request"`
	Booking *intakeModels.BookingResponse       `json:"booking"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ApproveRequest) ToUseCaseRequest(requestID int64, actor domain.Actor) *approveRequest.Request {
	return &approveRequest.Request{
		RequestID:    requestID,
		SlotToken:    r.SlotToken,
		Reason:       r.Reason,
		RequiredPart: r.RequiredPart,
		Notes:        r.Notes,
		OdometerKm:   r.OdometerKm,
		Actor:        actor,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *approveRequest.Response, now time.Time) *ApproveResponse {
	return &ApproveResponse{
		Request: requestModels.FromDomainEntryRequest(resp.Request, now, domain.DefaultOverdueRequestDays),
		Booking: intakeModels.FromDomainBooking(resp.Booking, nil),
	}
}
