package approve_request

import "github.com/m04kA/SMC-WorkshopService/internal/domain"

// Request одобрение заявки на выбранный слот
// Дополнительные поля переходят в создаваемое ингресо
type Request struct {
	RequestID    int64
	SlotToken    string
	Reason       *string
	RequiredPart *string
	Notes        *string
	OdometerKm   *int
	Actor        domain.Actor
}

// Response одобренная заявка и созданное ингресо
type Response struct {
	Request *domain.EntryRequest
	Booking *domain.Booking
}
