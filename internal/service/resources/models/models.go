package models

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// CreateResourceRequest запрос на добавление подъёмника
type CreateResourceRequest struct {
	Category    string  `json:"category"`
	Number      int     `json:"number"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// SetActiveRequest включение/выключение подъёмника
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// ResourceResponse подъёмник
type ResourceResponse struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Number      int       `json:"number"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ResourceListResponse список подъёмников
type ResourceListResponse struct {
	Resources []ResourceResponse `json:"resources"`
}

// FromDomainResource конвертирует domain модель в response
func FromDomainResource(r *domain.Resource) *ResourceResponse {
	return &ResourceResponse{
		ID:          r.ID,
		Category:    string(r.Category),
		Number:      r.Number,
		Name:        r.Label(),
		Description: r.Description,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

// FromDomainResourceList конвертирует список
func FromDomainResourceList(items []*domain.Resource) *ResourceListResponse {
	out := &ResourceListResponse{Resources: make([]ResourceResponse, 0, len(items))}
	for _, r := range items {
		out.Resources = append(out.Resources, *FromDomainResource(r))
	}
	return out
}
