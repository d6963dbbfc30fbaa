package approve_request

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	requestRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/request"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/schedule_booking"
)

// UseCase use case одобрения заявки водителя с постановкой в график
type UseCase struct {
	requestRepo  RequestRepository
	scheduler    Scheduler
	notifier     Notifier
	txManager    TransactionManager
	schedule     domain.WorkshopSchedule
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	requestRepo RequestRepository,
	scheduler Scheduler,
	notifier Notifier,
	txManager TransactionManager,
	schedule domain.WorkshopSchedule,
	logger Logger,
) *UseCase {
	return &UseCase{
		requestRepo:  requestRepo,
		scheduler:    scheduler,
		notifier:     notifier,
		txManager:    txManager,
		schedule:     schedule,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute одобряет заявку: создаёт ингресо на слоте и связывает его с заявкой
// Занятость слота перепроверяется в момент записи, всё в одной сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ApproveRequest: request=%d, slot=%s, approver=%d", req.RequestID, req.SlotToken, req.Actor.ID)

	// 1. Разбираем токен слота
	if strings.TrimSpace(req.SlotToken) == "" {
		return nil, domain.NewValidationError("slot", "is required")
	}
	slot, err := domain.ParseSlotToken(req.SlotToken, uc.schedule.Location)
	if err != nil {
		uc.logger.Warn("ApproveRequest: invalid slot token: %v", err)
		return nil, err
	}
	if req.OdometerKm != nil && *req.OdometerKm < 0 {
		return nil, domain.NewValidationError("odometer_km", "must not be negative")
	}

	var resp Response

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Заявка существует и ожидает ответа
		entry, err := uc.requestRepo.GetByID(txCtx, req.RequestID)
		if err != nil {
			if errors.Is(err, requestRepo.ErrRequestNotFound) {
				return &domain.NotFoundError{Entity: "entry_request", ID: req.RequestID}
			}
			return fmt.Errorf("%w: failed to get request: %w", ErrInternal, err)
		}
		if err := entry.TransitionTo(domain.RequestApproved); err != nil {
			return err
		}

		// 3. Записываем ингресо; при занятом слоте SlotConflictError
		driverID := entry.DriverID
		booking, err := uc.scheduler.Schedule(txCtx, &schedule_booking.Intake{
			VehicleID:    entry.VehicleID,
			Plate:        entry.VehiclePlate,
			Slot:         slot,
			DriverID:     &driverID,
			Reason:       bookingReason(req.Reason, entry.Reason),
			Notes:        req.Notes,
			RequiredPart: req.RequiredPart,
			OdometerKm:   req.OdometerKm,
			ScheduledBy:  req.Actor.ID,
		})
		if err != nil {
			return err
		}

		// 4. Фиксируем ответ на заявке
		now := uc.timeProvider.Now()
		estimatedAt := booking.ScheduledAt
		bookingID := booking.ID
		responderID := req.Actor.ID

		entry.EstimatedAt = &estimatedAt
		entry.BookingID = &bookingID
		entry.ResponderID = &responderID
		entry.RespondedAt = &now

		if err := uc.requestRepo.Update(txCtx, entry); err != nil {
			return fmt.Errorf("%w: failed to update request: %w", ErrInternal, err)
		}

		booking.RequestID = &entry.ID
		resp.Request = entry
		resp.Booking = booking
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInternal) || errors.Is(err, schedule_booking.ErrInternal) {
			uc.logger.Error("ApproveRequest: request=%d: %v", req.RequestID, err)
		} else {
			uc.logger.Warn("ApproveRequest: request=%d rejected: %v", req.RequestID, err)
		}
		return nil, err
	}

	// 5. Уведомляем водителя после фиксации транзакции
	uc.notifyDriver(resp.Request, resp.Booking)

	uc.logger.Info("ApproveRequest: request=%d approved, booking=%d", resp.Request.ID, resp.Booking.ID)
	return &resp, nil
}

func (uc *UseCase) notifyDriver(entry *domain.EntryRequest, booking *domain.Booking) {
	at := booking.ScheduledAt.In(uc.schedule.Location).Format(domain.NotesTimestampFormat)

	queued := uc.notifier.Dispatch(notificationservice.Notification{
		UserID:  entry.DriverID,
		Type:    notificationservice.TypeBookingScheduled,
		Title:   entry.VehiclePlate + " - Ingreso Programado",
		Message: fmt.Sprintf("El ingreso del vehículo %s al taller quedó programado para %s", entry.VehiclePlate, at),
		Metadata: map[string]string{
			"booking_id": strconv.FormatInt(booking.ID, 10),
			"request_id": strconv.FormatInt(entry.ID, 10),
			"plate":      entry.VehiclePlate,
		},
	})
	if !queued {
		uc.logger.Warn("ApproveRequest: notification for request=%d was dropped", entry.ID)
	}
}

// bookingReason причина ингресо: явная, иначе из заявки, иначе по умолчанию
func bookingReason(explicit *string, fromRequest string) string {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		return strings.TrimSpace(*explicit)
	}
	if strings.TrimSpace(fromRequest) != "" {
		return strings.TrimSpace(fromRequest)
	}
	return domain.DefaultBookingReason
}
