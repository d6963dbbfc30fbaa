package submit_request

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	requestModels "github.com/m04kA/SMC-WorkshopService/internal/service/requests/models"
	submitRequest "github.com/m04kA/SMC-WorkshopService/internal/usecase/submit_request"
)

// SubmitRequest HTTP request model
type SubmitRequest struct {
	Plate  string  `json:"plate"`
	Reason string  `json:"reason"`
	Phone  *string `json:"phone,omitempty"`
	Route  *string `json:"route,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *SubmitRequest) ToUseCaseRequest(actor domain.Actor) *submitRequest.Request {
	return &submitRequest.Request{
		Plate:  r.Plate,
		Reason: r.Reason,
		Phone:  r.Phone,
		Route:  r.Route,
		Actor:  actor,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
// Только что созданная заявка не может быть просроченной
func FromUseCaseResponse(resp *submitRequest.Response, now time.Time) *requestModels.EntryRequestResponse {
	return requestModels.FromDomainEntryRequest(resp.Request, now, domain.DefaultOverdueRequestDays)
}
