package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Days != nil && (*req.Days < 1 || *req.Days > domain.MaxScheduleDays) {
		return domain.NewValidationError("days", fmt.Sprintf("must be between 1 and %d", domain.MaxScheduleDays))
	}

	if req.Category != nil && !req.Category.IsValid() {
		return domain.NewValidationError("category", fmt.Sprintf("unknown category %q", *req.Category))
	}

	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return domain.NewValidationError("resource_id", "must be positive")
	}

	return nil
}
