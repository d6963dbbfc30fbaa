package tasks

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/internal/service/tasks/models"
)

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.NewValidationError("title", "is required")
	}
	if len(title) > domain.MaxTaskTitleLength {
		return "", domain.NewValidationError("title", fmt.Sprintf("must be at most %d characters", domain.MaxTaskTitleLength))
	}
	return title, nil
}

func parsePriority(raw *string) (domain.TaskPriority, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return domain.PriorityMedium, nil
	}
	p := domain.TaskPriority(strings.ToUpper(strings.TrimSpace(*raw)))
	if !p.IsValid() {
		return "", domain.NewValidationError("priority", fmt.Sprintf("unknown priority %q", *raw))
	}
	return p, nil
}

func validateMinutes(field string, v *int) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > domain.MaxEstimatedMinutes {
		return domain.NewValidationError(field, fmt.Sprintf("must be between 0 and %d", domain.MaxEstimatedMinutes))
	}
	return nil
}

func validateMechanic(id *int64) error {
	if id != nil && *id <= 0 {
		return domain.NewValidationError("mechanic_id", "must be positive")
	}
	return nil
}

func validateCreate(req *models.CreateTaskRequest) (string, domain.TaskPriority, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return "", "", err
	}
	priority, err := parsePriority(req.Priority)
	if err != nil {
		return "", "", err
	}
	if err := validateMechanic(req.MechanicID); err != nil {
		return "", "", err
	}
	if err := validateMinutes("estimated_minutes", req.EstimatedMinutes); err != nil {
		return "", "", err
	}
	return title, priority, nil
}

func validateEdit(req *models.EditTaskRequest) error {
	if req.Title != nil {
		if _, err := validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Priority != nil {
		if _, err := parsePriority(req.Priority); err != nil {
			return err
		}
	}
	if req.MechanicID != nil && req.UnassignMechanic {
		return domain.NewValidationError("mechanic_id", "either mechanic or unassign, not both")
	}
	if err := validateMechanic(req.MechanicID); err != nil {
		return err
	}
	return validateMinutes("estimated_minutes", req.EstimatedMinutes)
}

func validateComment(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewValidationError("text", "is required")
	}
	if len(text) > domain.MaxCommentLength {
		return "", domain.NewValidationError("text", fmt.Sprintf("must be at most %d characters", domain.MaxCommentLength))
	}
	return text, nil
}
