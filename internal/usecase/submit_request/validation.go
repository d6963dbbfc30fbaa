package submit_request

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

const (
	maxPhoneLength = 30
	maxRouteLength = 200
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	plate := domain.NormalizePlate(req.Plate)
	if plate == "" {
		return domain.NewValidationError("plate", "is required")
	}
	if len(plate) > domain.MaxPlateLength {
		return domain.NewValidationError("plate", fmt.Sprintf("must be at most %d characters", domain.MaxPlateLength))
	}

	if strings.TrimSpace(req.Reason) == "" {
		return domain.NewValidationError("reason", "is required")
	}
	if len(req.Reason) > domain.MaxReasonLength {
		return domain.NewValidationError("reason", fmt.Sprintf("must be at most %d characters", domain.MaxReasonLength))
	}

	if req.Phone != nil && len(*req.Phone) > maxPhoneLength {
		return domain.NewValidationError("phone", fmt.Sprintf("must be at most %d characters", maxPhoneLength))
	}
	if req.Route != nil && len(*req.Route) > maxRouteLength {
		return domain.NewValidationError("route", fmt.Sprintf("must be at most %d characters", maxRouteLength))
	}

	if req.Actor.ID <= 0 {
		return domain.NewValidationError("driver_id", "must be positive")
	}

	return nil
}

// optionalText обрезает пробелы, пустая строка превращается в nil
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
