package models

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// RecordEntryRequest въезд автомобиля на территорию
type RecordEntryRequest struct {
	Plate      string  `json:"plate"`
	DriverName *string `json:"driverName,omitempty"`
	Reason     *string `json:"reason,omitempty"`
}

// GateEntryResponse запись КПП
type GateEntryResponse struct {
	ID              int64      `json:"id"`
	VehicleID       int64      `json:"vehicleId"`
	Plate           string     `json:"plate"`
	DriverName      *string    `json:"driverName,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
	RecordedBy      int64      `json:"recordedBy"`
	EnteredAt       time.Time  `json:"enteredAt"`
	ExitedAt        *time.Time `json:"exitedAt,omitempty"`
	BookingID       *int64     `json:"bookingId,omitempty"`
	DurationMinutes int        `json:"durationMinutes"` // для незакрытой записи до текущего момента
}

// FromDomainGateEntry конвертирует запись КПП
func FromDomainGateEntry(e *domain.GateEntry, now time.Time) *GateEntryResponse {
	return &GateEntryResponse{
		ID:              e.ID,
		VehicleID:       e.VehicleID,
		Plate:           e.Plate,
		DriverName:      e.DriverName,
		Reason:          e.Reason,
		RecordedBy:      e.RecordedBy,
		EnteredAt:       e.EnteredAt,
		ExitedAt:        e.ExitedAt,
		BookingID:       e.BookingID,
		DurationMinutes: e.DurationMinutes(now),
	}
}
