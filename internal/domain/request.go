package domain

import "time"

// RequestStatus статус заявки водителя на въезд в мастерскую
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDIENTE"
	RequestApproved  RequestStatus = "APROBADA"
	RequestRejected  RequestStatus = "RECHAZADA"
	RequestCompleted RequestStatus = "COMPLETADA"
	RequestWithdrawn RequestStatus = "RETIRADA"
	RequestCancelled RequestStatus = "CANCELADA"
)

var requestTransitions = map[RequestStatus]map[RequestStatus]bool{
	RequestPending: {
		RequestApproved:  true,
		RequestRejected:  true,
		RequestCancelled: true,
	},
	RequestApproved: {
		RequestCompleted: true,
		RequestCancelled: true,
	},
	RequestCompleted: {
		RequestWithdrawn: true,
	},
}

// CanTransitionRequest допустим ли переход заявки from -> to
func CanTransitionRequest(from, to RequestStatus) bool {
	return requestTransitions[from][to]
}

// EntryRequest заявка водителя на въезд
type EntryRequest struct {
	ID             int64
	VehicleID      int64
	VehiclePlate   string
	DriverID       int64
	Reason         string
	Phone          *string
	Route          *string
	Status         RequestStatus
	EstimatedAt    *time.Time // выставляет согласующий
	BookingID      *int64
	ResponderID    *int64
	RespondedAt    *time.Time
	ResponderNotes *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive заявка блокирует создание новой заявки на тот же автомобиль
func (r *EntryRequest) IsActive() bool {
	return r.Status == RequestPending || r.Status == RequestApproved
}

// TransitionTo меняет статус или возвращает IllegalTransitionError
func (r *EntryRequest) TransitionTo(to RequestStatus) error {
	if !CanTransitionRequest(r.Status, to) {
		return &IllegalTransitionError{
			Entity: "entry_request",
			ID:     r.ID,
			From:   string(r.Status),
			Action: string(to),
		}
	}
	r.Status = to
	return nil
}

// DaysSinceRequest полных суток с момента подачи
func (r *EntryRequest) DaysSinceRequest(now time.Time) int {
	d := now.Sub(r.CreatedAt)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// IsOverdue заявка висит без ответа дольше порога (только для отображения)
func (r *EntryRequest) IsOverdue(now time.Time, thresholdDays int) bool {
	return r.Status == RequestPending && r.DaysSinceRequest(now) > thresholdDays
}
