package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	gateRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/gate"
	fleetClient "github.com/m04kA/SMC-WorkshopService/internal/integrations/fleetservice"
	"github.com/m04kA/SMC-WorkshopService/internal/service/gate/models"
)

// Service записи охраны о въезде и выезде автомобилей
// Запись о въезде открывает приём ингресо (check-in)
type Service struct {
	gateRepo     GateRepository
	bookingRepo  BookingRepository
	fleetClient  FleetClient
	txManager    TransactionManager
	schedule     domain.WorkshopSchedule
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	gateRepo GateRepository,
	bookingRepo BookingRepository,
	fleetClient FleetClient,
	txManager TransactionManager,
	schedule domain.WorkshopSchedule,
	logger Logger,
) *Service {
	return &Service{
		gateRepo:     gateRepo,
		bookingRepo:  bookingRepo,
		fleetClient:  fleetClient,
		txManager:    txManager,
		schedule:     schedule,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// RecordEntry фиксирует въезд и привязывает его к ближайшему ингресо PROGRAMADO
// этого автомобиля начиная с сегодняшнего дня. Отсутствие такого ингресо не ошибка
func (s *Service) RecordEntry(ctx context.Context, req *models.RecordEntryRequest, actor domain.Actor) (*models.GateEntryResponse, error) {
	s.logger.Info("RecordEntry: plate=%s, guard=%d", req.Plate, actor.ID)

	plate := domain.NormalizePlate(req.Plate)
	if plate == "" {
		return nil, domain.NewValidationError("plate", "is required")
	}
	if len(plate) > domain.MaxPlateLength {
		return nil, domain.NewValidationError("plate", fmt.Sprintf("must be at most %d characters", domain.MaxPlateLength))
	}

	vehicle, err := s.fleetClient.GetVehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, fleetClient.ErrVehicleNotFound) {
			s.logger.Warn("RecordEntry: unknown vehicle plate=%s", plate)
			return nil, &domain.VehicleUnknownError{Plate: plate}
		}
		s.logger.Error("RecordEntry: fleet lookup failed for plate=%s: %v", plate, err)
		return nil, fmt.Errorf("%w: RecordEntry - fleet error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	var entry *domain.GateEntry

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		created, err := s.gateRepo.Create(txCtx, &domain.GateEntry{
			VehicleID:  vehicle.ID,
			Plate:      vehicle.Plate,
			DriverName: trimmed(req.DriverName),
			Reason:     trimmed(req.Reason),
			RecordedBy: actor.ID,
			EnteredAt:  now,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create gate entry: %w", ErrInternal, err)
		}

		booking, err := s.bookingRepo.FindScheduledForGateLink(txCtx, vehicle.ID, s.schedule.StartOfDay(now))
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Info("RecordEntry: no scheduled booking for vehicle=%d", vehicle.ID)
		case err != nil:
			return fmt.Errorf("%w: failed to find booking: %w", ErrInternal, err)
		default:
			if err := s.bookingRepo.LinkGateEntry(txCtx, booking.ID, created.ID); err != nil {
				if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
					return fmt.Errorf("%w: failed to link booking: %w", ErrInternal, err)
				}
				s.logger.Warn("RecordEntry: booking id=%d was linked concurrently", booking.ID)
			} else {
				created.BookingID = &booking.ID
			}
		}

		entry = created
		return nil
	})
	if err != nil {
		s.logger.Error("RecordEntry: plate=%s: %v", plate, err)
		return nil, err
	}

	s.logger.Info("RecordEntry: created gate entry id=%d for vehicle=%d", entry.ID, vehicle.ID)
	return models.FromDomainGateEntry(entry, now), nil
}

// RecordExit фиксирует выезд; повторный выезд запрещён
func (s *Service) RecordExit(ctx context.Context, id int64, actor domain.Actor) (*models.GateEntryResponse, error) {
	s.logger.Info("RecordExit: entry id=%d, guard=%d", id, actor.ID)

	now := s.timeProvider.Now()
	var entry *domain.GateEntry

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		e, err := s.load(txCtx, id)
		if err != nil {
			return err
		}
		if !e.IsInside() {
			return exitedError(id)
		}

		if err := s.gateRepo.SetExit(txCtx, id, now); err != nil {
			if errors.Is(err, gateRepo.ErrAlreadyExited) {
				return exitedError(id)
			}
			return fmt.Errorf("%w: failed to set exit: %w", ErrInternal, err)
		}

		e.ExitedAt = &now
		entry = e
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("RecordExit: entry id=%d: %v", id, err)
		} else {
			s.logger.Warn("RecordExit: entry id=%d rejected: %v", id, err)
		}
		return nil, err
	}

	return models.FromDomainGateEntry(entry, now), nil
}

// GetByID получает запись КПП
func (s *Service) GetByID(ctx context.Context, id int64) (*models.GateEntryResponse, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainGateEntry(e, s.timeProvider.Now()), nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.GateEntry, error) {
	e, err := s.gateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gateRepo.ErrEntryNotFound) {
			return nil, &domain.NotFoundError{Entity: "gate_entry", ID: id}
		}
		return nil, fmt.Errorf("%w: failed to get gate entry: %w", ErrInternal, err)
	}
	return e, nil
}

func exitedError(id int64) error {
	return &domain.IllegalTransitionError{
		Entity: "gate_entry",
		ID:     id,
		From:   "EXITED",
		Action: "exit",
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
