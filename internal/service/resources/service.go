package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	resourceRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/resource"
	"github.com/m04kA/SMC-WorkshopService/internal/service/resources/models"
)

// Service реестр подъёмников мастерской
type Service struct {
	resourceRepo ResourceRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(resourceRepo ResourceRepository, logger Logger) *Service {
	return &Service{
		resourceRepo: resourceRepo,
		logger:       logger,
	}
}

// ListActive возвращает включённые подъёмники в порядке (категория, номер)
// category пустой строкой или nil означает все категории
func (s *Service) ListActive(ctx context.Context, category *string) (*models.ResourceListResponse, error) {
	filter, err := parseCategory(category)
	if err != nil {
		return nil, err
	}

	items, err := s.resourceRepo.List(ctx, filter, true)
	if err != nil {
		s.logger.Error("ListActive: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListActive - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainResourceList(items), nil
}

// ListAll возвращает все подъёмники, включая выключенные
func (s *Service) ListAll(ctx context.Context) (*models.ResourceListResponse, error) {
	items, err := s.resourceRepo.List(ctx, nil, false)
	if err != nil {
		s.logger.Error("ListAll: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListAll - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainResourceList(items), nil
}

// GetByID получает подъёмник по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ResourceResponse, error) {
	res, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			return nil, &domain.NotFoundError{Entity: "resource", ID: id}
		}
		s.logger.Error("GetByID: repository error for resource id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainResource(res), nil
}

// SetActive включает или выключает подъёмник. Единственное изменяемое поле
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*models.ResourceResponse, error) {
	s.logger.Info("SetActive: resource id=%d active=%t", id, active)

	if err := s.resourceRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			s.logger.Warn("SetActive: resource id=%d not found", id)
			return nil, &domain.NotFoundError{Entity: "resource", ID: id}
		}
		s.logger.Error("SetActive: repository error for resource id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: SetActive - repository error: %v", ErrInternal, err)
	}

	return s.GetByID(ctx, id)
}

// Create добавляет подъёмник в реестр
func (s *Service) Create(ctx context.Context, req *models.CreateResourceRequest) (*models.ResourceResponse, error) {
	s.logger.Info("Create: resource category=%s number=%d", req.Category, req.Number)

	category := domain.ResourceCategory(strings.ToUpper(strings.TrimSpace(req.Category)))
	if !category.IsValid() {
		return nil, domain.NewValidationError("category", fmt.Sprintf("unknown category %q", req.Category))
	}
	if req.Number <= 0 {
		return nil, domain.NewValidationError("number", "must be positive")
	}

	name := strings.TrimSpace(req.Name)
	res := &domain.Resource{
		Category:    category,
		Number:      req.Number,
		Name:        name,
		Description: req.Description,
		Active:      true,
	}
	if name == "" {
		res.Name = res.Label()
	}

	created, err := s.resourceRepo.Create(ctx, res)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceExists) {
			s.logger.Warn("Create: resource %s %d already exists", category, req.Number)
			return nil, ErrResourceExists
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created resource id=%d", created.ID)
	return models.FromDomainResource(created), nil
}

func parseCategory(raw *string) (*domain.ResourceCategory, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	c := domain.ResourceCategory(strings.ToUpper(strings.TrimSpace(*raw)))
	if !c.IsValid() {
		return nil, domain.NewValidationError("category", fmt.Sprintf("unknown category %q", *raw))
	}
	return &c, nil
}
