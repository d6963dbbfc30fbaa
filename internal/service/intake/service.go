package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	pauseRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/pause"
	requestRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/request"
	"github.com/m04kA/SMC-WorkshopService/internal/service/intake/models"
)

// Service жизненный цикл ингресо: приём, паузы, завершение, выдача, отмена
type Service struct {
	bookingRepo  BookingRepository
	pauseRepo    PauseRepository
	taskRepo     TaskRepository
	requestRepo  RequestRepository
	notifier     Notifier
	txManager    TransactionManager
	schedule     domain.WorkshopSchedule
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	bookingRepo BookingRepository,
	pauseRepo PauseRepository,
	taskRepo TaskRepository,
	requestRepo RequestRepository,
	notifier Notifier,
	txManager TransactionManager,
	schedule domain.WorkshopSchedule,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		pauseRepo:    pauseRepo,
		taskRepo:     taskRepo,
		requestRepo:  requestRepo,
		notifier:     notifier,
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

// GetByID ингресо с паузами, метриками и связанной заявкой
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	var resp *models.BookingResponse

	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		booking, err := s.load(txCtx, id)
		if err != nil {
			return err
		}
		resp, err = s.view(txCtx, booking)
		return err
	})
	if err != nil {
		s.logFailure("GetByID", id, err)
		return nil, err
	}

	return resp, nil
}

// CheckIn принимает автомобиль в работу: PROGRAMADO -> EN_PROCESO
// Требуется зафиксированный въезд на КПП; занятость слота повторно не проверяется
func (s *Service) CheckIn(ctx context.Context, id int64, req *models.CheckInRequest, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("CheckIn: booking id=%d, actor=%d", id, actor.ID)

	if req.OdometerKm != nil && *req.OdometerKm < 0 {
		return nil, domain.NewValidationError("odometer_km", "must not be negative")
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return nil, domain.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", domain.MaxNotesLength))
	}

	now := s.timeProvider.Now()
	if req.ArrivedAt != nil && req.ArrivedAt.After(now) {
		return nil, domain.NewValidationError("arrived_at", "must not be in the future")
	}

	resp, booking, err := s.mutate(ctx, "CheckIn", id, func(txCtx context.Context, b *domain.Booking) error {
		if err := b.Apply(domain.ActionCheckIn); err != nil {
			return err
		}
		if !b.HasGateEntry() {
			return &domain.IllegalTransitionError{
				Entity: "booking",
				ID:     b.ID,
				From:   string(domain.BookingScheduled),
				Action: string(domain.ActionCheckIn),
				Reason: "no gate entry recorded for the vehicle",
			}
		}

		arrived := now
		if req.ArrivedAt != nil {
			arrived = *req.ArrivedAt
		}
		supervisor := actor.ID

		b.ArrivedAt = &arrived
		b.StartedAt = &now
		b.SupervisorID = &supervisor
		if req.OdometerKm != nil {
			b.OdometerKm = req.OdometerKm
		}
		if req.Notes != nil {
			b.Notes = domain.AppendNote(b.Notes, *req.Notes, now.In(s.schedule.Location))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyDriver(booking, notificationTypeStarted, booking.VehiclePlate+" - Ingreso Iniciado",
		fmt.Sprintf("El vehículo %s ingresó al taller", booking.VehiclePlate))

	return resp, nil
}

// Pause приостанавливает работы: EN_PROCESO -> EN_PAUSA, открывает паузу
func (s *Service) Pause(ctx context.Context, id int64, req *models.PauseRequest, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("Pause: booking id=%d, actor=%d", id, actor.ID)

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "is required")
	}
	if len(reason) > domain.MaxReasonLength {
		return nil, domain.NewValidationError("reason", fmt.Sprintf("must be at most %d characters", domain.MaxReasonLength))
	}

	now := s.timeProvider.Now()

	resp, booking, err := s.mutate(ctx, "Pause", id, func(txCtx context.Context, b *domain.Booking) error {
		if err := b.Apply(domain.ActionPause); err != nil {
			return err
		}

		_, err := s.pauseRepo.Create(txCtx, &domain.Pause{
			BookingID:   b.ID,
			Reason:      reason,
			Description: req.Description,
			StartedAt:   now,
			RecordedBy:  actor.ID,
		})
		if err != nil {
			if errors.Is(err, pauseRepo.ErrPauseAlreadyOpen) {
				return &domain.IllegalTransitionError{
					Entity: "booking",
					ID:     b.ID,
					From:   string(domain.BookingInProgress),
					Action: string(domain.ActionPause),
					Reason: "booking already has an open pause",
				}
			}
			return fmt.Errorf("%w: failed to create pause: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyDriver(booking, notificationTypePaused, booking.VehiclePlate+" - Pausa Registrada",
		fmt.Sprintf("Los trabajos sobre el vehículo %s fueron pausados: %s", booking.VehiclePlate, reason))

	return resp, nil
}

// Resume возобновляет работы: EN_PAUSA -> EN_PROCESO, закрывает открытую паузу
func (s *Service) Resume(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("Resume: booking id=%d, actor=%d", id, actor.ID)

	now := s.timeProvider.Now()

	resp, _, err := s.mutate(ctx, "Resume", id, func(txCtx context.Context, b *domain.Booking) error {
		if err := b.Apply(domain.ActionResume); err != nil {
			return err
		}
		if err := s.ensureSlotFree(txCtx, b); err != nil {
			return err
		}

		open, err := s.pauseRepo.GetOpen(txCtx, b.ID)
		if err != nil {
			if errors.Is(err, pauseRepo.ErrPauseNotFound) {
				s.logger.Warn("Resume: booking id=%d has no open pause", b.ID)
				return nil
			}
			return fmt.Errorf("%w: failed to get open pause: %w", ErrInternal, err)
		}

		open.Close(now)
		if err := s.pauseRepo.Close(txCtx, open.ID, *open.EndedAt); err != nil {
			return fmt.Errorf("%w: failed to close pause: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Terminate завершает работы: только из EN_PROCESO и без незавершённых задач
// Связанная заявка становится COMPLETADA, водитель получает уведомление о готовности
func (s *Service) Terminate(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("Terminate: booking id=%d, actor=%d", id, actor.ID)

	now := s.timeProvider.Now()

	resp, booking, err := s.mutate(ctx, "Terminate", id, func(txCtx context.Context, b *domain.Booking) error {
		if err := b.Apply(domain.ActionTerminate); err != nil {
			return err
		}

		unfinished, err := s.taskRepo.CountUnfinished(txCtx, b.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to count tasks: %w", ErrInternal, err)
		}
		if unfinished > 0 {
			return &domain.PendingTasksError{BookingID: b.ID, Count: unfinished}
		}

		b.FinishedAt = &now
		return s.mirrorRequest(txCtx, b.ID, domain.RequestApproved, domain.RequestCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.notifyDriver(booking, notificationTypeReady, booking.VehiclePlate+" - Listo para Retiro",
		fmt.Sprintf("El vehículo %s está listo para ser retirado del taller", booking.VehiclePlate))

	return resp, nil
}

// Withdraw фиксирует выдачу автомобиля: TERMINADO -> RETIRADO
func (s *Service) Withdraw(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("Withdraw: booking id=%d, actor=%d", id, actor.ID)

	resp, _, err := s.mutate(ctx, "Withdraw", id, func(txCtx context.Context, b *domain.Booking) error {
		if err := b.Apply(domain.ActionWithdraw); err != nil {
			return err
		}
		return s.mirrorRequest(txCtx, b.ID, domain.RequestCompleted, domain.RequestWithdrawn)
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Cancel отменяет ингресо до начала работ: PROGRAMADO -> CANCELADO
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: booking id=%d, actor=%d", id, actor.ID)

	resp, _, err := s.mutate(ctx, "Cancel", id, func(txCtx context.Context, b *domain.Booking) error {
		if err := b.Apply(domain.ActionCancel); err != nil {
			return err
		}
		return s.mirrorRequest(txCtx, b.ID, domain.RequestApproved, domain.RequestCancelled)
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// mutate читает ингресо под блокировкой, применяет fn и сохраняет результат в одной транзакции
// При ошибке fn ничего не сохраняется
func (s *Service) mutate(
	ctx context.Context,
	op string,
	id int64,
	fn func(txCtx context.Context, b *domain.Booking) error,
) (*models.BookingResponse, *domain.Booking, error) {
	var (
		resp    *models.BookingResponse
		booking *domain.Booking
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := s.load(txCtx, id)
		if err != nil {
			return err
		}

		if err := fn(txCtx, b); err != nil {
			return err
		}

		if err := s.bookingRepo.Update(txCtx, b); err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) && b.ResourceID != nil {
				return &domain.SlotConflictError{ResourceID: *b.ResourceID, Start: b.ScheduledAt}
			}
			return fmt.Errorf("%w: failed to update booking: %w", ErrInternal, err)
		}

		resp, err = s.view(txCtx, b)
		booking = b
		return err
	})
	if err != nil {
		s.logFailure(op, id, err)
		return nil, nil, err
	}

	s.logger.Info("%s: booking id=%d is now %s", op, id, booking.Status)
	return resp, booking, nil
}

// ensureSlotFree проверяет, что на время паузы окно подъёмника не отдали другому ингресо
// EN_PAUSA подъёмник не занимает, а EN_PROCESO снова занимает
func (s *Service) ensureSlotFree(ctx context.Context, b *domain.Booking) error {
	if b.ResourceID == nil {
		return nil
	}

	occupying, err := s.bookingRepo.ListOccupying(ctx, []int64{*b.ResourceID}, b.ScheduledAt, b.ScheduledEnd())
	if err != nil {
		return fmt.Errorf("%w: failed to check resource occupancy: %w", ErrInternal, err)
	}
	for _, other := range occupying {
		if other.ID != b.ID {
			return &domain.SlotConflictError{ResourceID: *b.ResourceID, Start: b.ScheduledAt}
		}
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, &domain.NotFoundError{Entity: "booking", ID: id}
		}
		return nil, fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
	}
	return b, nil
}

// view собирает response: паузы и ссылка на заявку
func (s *Service) view(ctx context.Context, b *domain.Booking) (*models.BookingResponse, error) {
	pauses, err := s.pauseRepo.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list pauses: %w", ErrInternal, err)
	}

	if b.RequestID == nil {
		req, err := s.requestRepo.GetByBookingID(ctx, b.ID)
		switch {
		case err == nil:
			b.RequestID = &req.ID
		case !errors.Is(err, requestRepo.ErrRequestNotFound):
			return nil, fmt.Errorf("%w: failed to get linked request: %w", ErrInternal, err)
		}
	}

	return models.FromDomainBooking(b, pauses), nil
}

// mirrorRequest переводит связанную заявку from -> to; заявки в другом статусе не трогаются
func (s *Service) mirrorRequest(ctx context.Context, bookingID int64, from, to domain.RequestStatus) error {
	req, err := s.requestRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			return nil
		}
		return fmt.Errorf("%w: failed to get linked request: %w", ErrInternal, err)
	}

	if req.Status != from {
		s.logger.Warn("mirrorRequest: request id=%d is %s, expected %s", req.ID, req.Status, from)
		return nil
	}
	if err := req.TransitionTo(to); err != nil {
		return err
	}

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return fmt.Errorf("%w: failed to update linked request: %w", ErrInternal, err)
	}
	return nil
}

func (s *Service) logFailure(op string, id int64, err error) {
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: booking id=%d: %v", op, id, err)
		return
	}
	s.logger.Warn("%s: booking id=%d rejected: %v", op, id, err)
}
