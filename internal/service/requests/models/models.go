package models

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// RejectRequest отклонение заявки
type RejectRequest struct {
	Notes string `json:"notes"`
}

// EntryRequestResponse заявка на въезд
type EntryRequestResponse struct {
	ID               int64      `json:"id"`
	VehicleID        int64      `json:"vehicleId"`
	Plate            string     `json:"plate"`
	DriverID         int64      `json:"driverId"`
	Reason           string     `json:"reason"`
	Phone            *string    `json:"phone,omitempty"`
	Route            *string    `json:"route,omitempty"`
	Status           string     `json:"status"`
	EstimatedAt      *time.Time `json:"estimatedAt,omitempty"`
	BookingID        *int64     `json:"bookingId,omitempty"`
	ResponderID      *int64     `json:"responderId,omitempty"`
	RespondedAt      *time.Time `json:"respondedAt,omitempty"`
	ResponderNotes   *string    `json:"responderNotes,omitempty"`
	DaysSinceRequest int        `json:"daysSinceRequest"`
	Overdue          bool       `json:"overdue"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// EntryRequestListResponse список заявок
type EntryRequestListResponse struct {
	Requests []EntryRequestResponse `json:"requests"`
}

// FromDomainEntryRequest конвертирует заявку; now и порог нужны для признака просрочки
func FromDomainEntryRequest(r *domain.EntryRequest, now time.Time, overdueDays int) *EntryRequestResponse {
	return &EntryRequestResponse{
		ID:               r.ID,
		VehicleID:        r.VehicleID,
		Plate:            r.VehiclePlate,
		DriverID:         r.DriverID,
		Reason:           r.Reason,
		Phone:            r.Phone,
		Route:            r.Route,
		Status:           string(r.Status),
		EstimatedAt:      r.EstimatedAt,
		BookingID:        r.BookingID,
		ResponderID:      r.ResponderID,
		RespondedAt:      r.RespondedAt,
		ResponderNotes:   r.ResponderNotes,
		DaysSinceRequest: r.DaysSinceRequest(now),
		Overdue:          r.IsOverdue(now, overdueDays),
		CreatedAt:        r.CreatedAt,
	}
}

// FromDomainEntryRequestList конвертирует список заявок
func FromDomainEntryRequestList(items []*domain.EntryRequest, now time.Time, overdueDays int) *EntryRequestListResponse {
	out := &EntryRequestListResponse{Requests: make([]EntryRequestResponse, 0, len(items))}
	for _, r := range items {
		out.Requests = append(out.Requests, *FromDomainEntryRequest(r, now, overdueDays))
	}
	return out
}
