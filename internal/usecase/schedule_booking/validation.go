package schedule_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.Plate) == "" {
		return domain.NewValidationError("plate", "is required")
	}
	if len(domain.NormalizePlate(req.Plate)) > domain.MaxPlateLength {
		return domain.NewValidationError("plate", fmt.Sprintf("must be at most %d characters", domain.MaxPlateLength))
	}

	hasToken := req.SlotToken != nil && strings.TrimSpace(*req.SlotToken) != ""
	hasExplicit := req.ResourceID != nil || req.ScheduledAt != nil
	switch {
	case hasToken && hasExplicit:
		return domain.NewValidationError("slot", "either slot token or resource and time, not both")
	case !hasToken && req.ScheduledAt == nil:
		return domain.NewValidationError("slot", "slot token or scheduled time is required")
	}
	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return domain.NewValidationError("resource_id", "must be positive")
	}

	if len(req.Reason) > domain.MaxReasonLength {
		return domain.NewValidationError("reason", fmt.Sprintf("must be at most %d characters", domain.MaxReasonLength))
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return domain.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", domain.MaxNotesLength))
	}
	if req.OdometerKm != nil && *req.OdometerKm < 0 {
		return domain.NewValidationError("odometer_km", "must not be negative")
	}

	return nil
}

// resolveSlot достаёт слот из токена или явных полей; подъёмник необязателен
func resolveSlot(req *Request, loc *time.Location) (domain.SlotToken, error) {
	if req.SlotToken != nil && strings.TrimSpace(*req.SlotToken) != "" {
		return domain.ParseSlotToken(*req.SlotToken, loc)
	}
	slot := domain.SlotToken{Start: req.ScheduledAt.In(loc)}
	if req.ResourceID != nil {
		slot.ResourceID = *req.ResourceID
	}
	return slot, nil
}
