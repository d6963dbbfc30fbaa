package domain

import (
	"fmt"
	"time"
)

// ResourceCategory тип подъёмника
type ResourceCategory string

const (
	ResourceLift3D      ResourceCategory = "ELEVADOR_3D"
	ResourceScissorLift ResourceCategory = "ELEVADOR_TIJERA"
)

// IsValid проверяет, что категория известна
func (c ResourceCategory) IsValid() bool {
	return c == ResourceLift3D || c == ResourceScissorLift
}

// Resource подъёмник (рабочее место) мастерской
// После появления ссылок из ингресо меняется только Active
type Resource struct {
	ID          int64
	Category    ResourceCategory
	Number      int // уникален в пределах категории
	Name        string
	Description *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Label возвращает отображаемое имя
func (r *Resource) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s %d", r.Category, r.Number)
}
