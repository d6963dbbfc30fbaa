package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	requestRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/request"
	"github.com/m04kA/SMC-WorkshopService/internal/service/requests/models"
)

// Service ответы на заявки водителей (кроме одобрения, см. usecase approve_request)
type Service struct {
	requestRepo  RequestRepository
	txManager    TransactionManager
	overdueDays  int
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
// overdueDays порог, после которого ожидающая заявка помечается просроченной
func NewService(requestRepo RequestRepository, txManager TransactionManager, overdueDays int, logger Logger) *Service {
	return &Service{
		requestRepo:  requestRepo,
		txManager:    txManager,
		overdueDays:  overdueDays,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// ListPending ожидающие ответа заявки, старые первыми
// Просрочка только информирует: заявка не отклоняется автоматически
func (s *Service) ListPending(ctx context.Context) (*models.EntryRequestListResponse, error) {
	items, err := s.requestRepo.ListPending(ctx)
	if err != nil {
		s.logger.Error("ListPending: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListPending - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListPending: fetched %d pending requests", len(items))
	return models.FromDomainEntryRequestList(items, s.timeProvider.Now(), s.overdueDays), nil
}

// GetByID получает заявку по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.EntryRequestResponse, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			s.logger.Warn("GetByID: request id=%d not found", id)
			return nil, &domain.NotFoundError{Entity: "entry_request", ID: id}
		}
		s.logger.Error("GetByID: repository error for request id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainEntryRequest(req, s.timeProvider.Now(), s.overdueDays), nil
}

// Reject отклоняет ожидающую заявку: PENDIENTE -> RECHAZADA. Комментарий обязателен
func (s *Service) Reject(ctx context.Context, id int64, req *models.RejectRequest, actor domain.Actor) (*models.EntryRequestResponse, error) {
	s.logger.Info("Reject: request id=%d, approver=%d", id, actor.ID)

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, domain.NewValidationError("notes", "is required")
	}
	if len(notes) > domain.MaxNotesLength {
		return nil, domain.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", domain.MaxNotesLength))
	}

	return s.respond(ctx, "Reject", id, func(entry *domain.EntryRequest) error {
		if err := entry.TransitionTo(domain.RequestRejected); err != nil {
			return err
		}

		now := s.timeProvider.Now()
		responder := actor.ID
		entry.ResponderID = &responder
		entry.RespondedAt = &now
		entry.ResponderNotes = &notes
		return nil
	})
}

// CancelByDriver отмена ожидающей заявки самим водителем: PENDIENTE -> CANCELADA
func (s *Service) CancelByDriver(ctx context.Context, id int64, actor domain.Actor) (*models.EntryRequestResponse, error) {
	s.logger.Info("CancelByDriver: request id=%d, driver=%d", id, actor.ID)

	return s.respond(ctx, "CancelByDriver", id, func(entry *domain.EntryRequest) error {
		if entry.DriverID != actor.ID {
			return ErrAccessDenied
		}
		if entry.Status != domain.RequestPending {
			return &domain.IllegalTransitionError{
				Entity: "entry_request",
				ID:     entry.ID,
				From:   string(entry.Status),
				Action: string(domain.RequestCancelled),
				Reason: "only pending requests can be cancelled by the driver",
			}
		}
		return entry.TransitionTo(domain.RequestCancelled)
	})
}

func (s *Service) respond(ctx context.Context, op string, id int64, change func(entry *domain.EntryRequest) error) (*models.EntryRequestResponse, error) {
	var result *domain.EntryRequest

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		entry, err := s.requestRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, requestRepo.ErrRequestNotFound) {
				return &domain.NotFoundError{Entity: "entry_request", ID: id}
			}
			return fmt.Errorf("%w: failed to get request: %w", ErrInternal, err)
		}

		if err := change(entry); err != nil {
			return err
		}

		if err := s.requestRepo.Update(txCtx, entry); err != nil {
			return fmt.Errorf("%w: failed to update request: %w", ErrInternal, err)
		}

		result = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("%s: request id=%d: %v", op, id, err)
		} else {
			s.logger.Warn("%s: request id=%d rejected: %v", op, id, err)
		}
		return nil, err
	}

	s.logger.Info("%s: request id=%d is now %s", op, id, result.Status)
	return models.FromDomainEntryRequest(result, s.timeProvider.Now(), s.overdueDays), nil
}
