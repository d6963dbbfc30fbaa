package submit_request

import "github.com/m04kA/SMC-WorkshopService/internal/domain"

// Request заявка водителя на въезд в мастерскую
type Request struct {
	Plate  string
	Reason string
	Phone  *string
	Route  *string
	Actor  domain.Actor
}

// Response созданная заявка
type Response struct {
	Request *domain.EntryRequest
}
