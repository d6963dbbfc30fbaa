package models

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// Request модели

// CheckInRequest приём автомобиля в работу
type CheckInRequest struct {
	ArrivedAt  *time.Time `json:"arrivedAt,omitempty"` // по умолчанию текущее время
	OdometerKm *int       `json:"odometerKm,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// PauseRequest приостановка работ
type PauseRequest struct {
	Reason      string  `json:"reason"`
	Description *string `json:"description,omitempty"`
}

// Response модели

// PauseResponse пауза
type PauseResponse struct {
	ID              int64      `json:"id"`
	Reason          string     `json:"reason"`
	Description     *string    `json:"description,omitempty"`
	StartedAt       time.Time  `json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	RecordedBy      int64      `json:"recordedBy"`
}

// MetricsResponse производные длительности; до завершения total и effective пусты
type MetricsResponse struct {
	TotalDurationMinutes *int `json:"totalDurationMinutes"`
	PauseMinutes         int  `json:"pauseMinutes"`
	EffectiveMinutes     *int `json:"effectiveMinutes"`
}

// BookingResponse ингресо с паузами и метриками
type BookingResponse struct {
	ID              int64           `json:"id"`
	VehicleID       int64           `json:"vehicleId"`
	Plate           string          `json:"plate"`
	ResourceID      *int64          `json:"resourceId,omitempty"`
	DriverID        *int64          `json:"driverId,omitempty"`
	ScheduledAt     time.Time       `json:"scheduledAt"`
	ScheduledEnd    time.Time       `json:"scheduledEnd"`
	DurationMinutes int             `json:"durationMinutes"`
	ArrivedAt       *time.Time      `json:"arrivedAt,omitempty"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	FinishedAt      *time.Time      `json:"finishedAt,omitempty"`
	Status          string          `json:"status"`
	Reason          string          `json:"reason"`
	Notes           *string         `json:"notes,omitempty"`
	RequiredPart    *string         `json:"requiredPart,omitempty"`
	OdometerKm      *int            `json:"odometerKm,omitempty"`
	ScheduledBy     *int64          `json:"scheduledBy,omitempty"`
	SupervisorID    *int64          `json:"supervisorId,omitempty"`
	GateEntryID     *int64          `json:"gateEntryId,omitempty"`
	RequestID       *int64          `json:"requestId,omitempty"`
	Pauses          []PauseResponse `json:"pauses"`
	Metrics         MetricsResponse `json:"metrics"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// FromDomainBooking конвертирует ингресо и его паузы в response
func FromDomainBooking(b *domain.Booking, pauses []*domain.Pause) *BookingResponse {
	metrics := domain.ComputeBookingMetrics(b, pauses)

	resp := &BookingResponse{
		ID:              b.ID,
		VehicleID:       b.VehicleID,
		Plate:           b.VehiclePlate,
		ResourceID:      b.ResourceID,
		DriverID:        b.DriverID,
		ScheduledAt:     b.ScheduledAt,
		ScheduledEnd:    b.ScheduledEnd(),
		DurationMinutes: b.DurationMinutes,
		ArrivedAt:       b.ArrivedAt,
		StartedAt:       b.StartedAt,
		FinishedAt:      b.FinishedAt,
		Status:          string(b.Status),
		Reason:          b.Reason,
		Notes:           b.Notes,
		RequiredPart:    b.RequiredPart,
		OdometerKm:      b.OdometerKm,
		ScheduledBy:     b.ScheduledBy,
		SupervisorID:    b.SupervisorID,
		GateEntryID:     b.GateEntryID,
		RequestID:       b.RequestID,
		Pauses:          make([]PauseResponse, 0, len(pauses)),
		Metrics: MetricsResponse{
			TotalDurationMinutes: metrics.TotalDurationMinutes,
			PauseMinutes:         metrics.PauseMinutes,
			EffectiveMinutes:     metrics.EffectiveMinutes,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}

	for _, p := range pauses {
		resp.Pauses = append(resp.Pauses, FromDomainPause(p))
	}

	return resp
}

// FromDomainPause конвертирует паузу
func FromDomainPause(p *domain.Pause) PauseResponse {
	resp := PauseResponse{
		ID:          p.ID,
		Reason:      p.Reason,
		Description: p.Description,
		StartedAt:   p.StartedAt,
		EndedAt:     p.EndedAt,
		RecordedBy:  p.RecordedBy,
	}
	if d, ok := p.DurationMinutes(); ok {
		resp.DurationMinutes = &d
	}
	return resp
}
