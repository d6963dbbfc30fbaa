package schedule_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	resourceRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/resource"
	fleetClient "github.com/m04kA/SMC-WorkshopService/internal/integrations/fleetservice"
)

// UseCase use case постановки автомобиля в график мастерской
type UseCase struct {
	bookingRepo  BookingRepository
	resourceRepo ResourceRepository
	requestRepo  RequestRepository
	fleetClient  FleetClient
	txManager    TransactionManager
	schedule     domain.WorkshopSchedule
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	resourceRepo ResourceRepository,
	requestRepo RequestRepository,
	fleetClient FleetClient,
	txManager TransactionManager,
	schedule domain.WorkshopSchedule,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		resourceRepo: resourceRepo,
		requestRepo:  requestRepo,
		fleetClient:  fleetClient,
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

// Execute ставит автомобиль в график на выбранный слот
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ScheduleBooking: plate=%s, actor=%d", req.Plate, req.Actor.ID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ScheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Разбираем слот
	slot, err := resolveSlot(req, uc.schedule.Location)
	if err != nil {
		uc.logger.Warn("ScheduleBooking: invalid slot: %v", err)
		return nil, err
	}

	// 3. Проверяем автомобиль в реестре автопарка
	vehicle, err := LookupVehicle(ctx, uc.fleetClient, req.Plate)
	if err != nil {
		uc.logger.Warn("ScheduleBooking: vehicle lookup failed for plate=%s: %v", req.Plate, err)
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = domain.DefaultBookingReason
	}

	// 4. Записываем ингресо
	booking, err := uc.Schedule(ctx, &Intake{
		VehicleID:    vehicle.ID,
		Plate:        vehicle.Plate,
		Slot:         slot,
		DriverID:     req.DriverID,
		Reason:       reason,
		Notes:        req.Notes,
		RequiredPart: req.RequiredPart,
		OdometerKm:   req.OdometerKm,
		ScheduledBy:  req.Actor.ID,
	})
	if err != nil {
		return nil, err
	}

	return &Response{Booking: booking, Token: slot.String()}, nil
}

// Schedule записывает ингресо в сериализуемой транзакции (или во внешней, если она уже открыта)
//
// Занятость перепроверяется под блокировкой, а ограничение БД на пересечение окон
// отсекает параллельную запись, прошедшую ту же проверку: в обоих случаях SlotConflictError
func (uc *UseCase) Schedule(ctx context.Context, in *Intake) (*domain.Booking, error) {
	now := uc.timeProvider.Now()
	start := in.Slot.Start
	end := start.Add(time.Duration(uc.schedule.SlotMinutes) * time.Minute)

	if start.Before(now) {
		uc.logger.Warn("Schedule: slot %s is in the past", in.Slot)
		return nil, domain.NewValidationError("slot", "must not be in the past")
	}
	if !uc.schedule.OnGrid(start) {
		uc.logger.Warn("Schedule: slot %s is off the workshop grid", in.Slot)
		return nil, domain.NewValidationError("slot", fmt.Sprintf(
			"must start on a %d-minute slot between %02d:00 and %02d:00",
			uc.schedule.SlotMinutes, uc.schedule.DayStartHour, uc.schedule.DayEndHour,
		))
	}

	var result *domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. У автомобиля нет активного ингресо
		active, err := uc.bookingRepo.GetActiveByVehicle(txCtx, in.VehicleID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return fmt.Errorf("%w: failed to get active booking: %w", ErrInternal, err)
		}
		if active != nil {
			return &domain.VehicleAlreadyInWorkshopError{VehicleID: in.VehicleID, Plate: in.Plate}
		}

		// 2. Подъёмник включён и свободен; ингресо без подъёмника ничего не занимает
		var resourceID *int64
		if in.Slot.HasResource() {
			id, err := uc.checkResource(txCtx, in.Slot.ResourceID, start, end)
			if err != nil {
				return err
			}
			resourceID = &id
		}

		// 3. Создаём ингресо в статусе PROGRAMADO
		booking := &domain.Booking{
			VehicleID:       in.VehicleID,
			VehiclePlate:    in.Plate,
			ResourceID:      resourceID,
			DriverID:        in.DriverID,
			ScheduledAt:     start,
			DurationMinutes: uc.schedule.SlotMinutes,
			Status:          domain.BookingScheduled,
			Reason:          in.Reason,
			Notes:           domain.AppendNote(nil, stringValue(in.Notes), now.In(uc.schedule.Location)),
			RequiredPart:    in.RequiredPart,
			OdometerKm:      in.OdometerKm,
			ScheduledBy:     &in.ScheduledBy,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrSlotTaken) && resourceID != nil:
				return &domain.SlotConflictError{ResourceID: *resourceID, Start: start}
			case errors.Is(err, bookingRepo.ErrVehicleBusy):
				return &domain.VehicleAlreadyInWorkshopError{VehicleID: in.VehicleID, Plate: in.Plate}
			}
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("Schedule: vehicle=%d slot=%s: %v", in.VehicleID, in.Slot, err)
		} else {
			uc.logger.Warn("Schedule: vehicle=%d slot=%s rejected: %v", in.VehicleID, in.Slot, err)
		}
		return nil, err
	}

	uc.logger.Info("Schedule: created booking id=%d vehicle=%d slot=%s", result.ID, in.VehicleID, in.Slot)
	return result, nil
}

// checkResource подъёмник существует, включён и свободен в [start, end)
// Одобренная заявка без ингресо занимает своё окно на всех подъёмниках
func (uc *UseCase) checkResource(ctx context.Context, id int64, start, end time.Time) (int64, error) {
	resource, err := uc.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrResourceNotFound) {
			return 0, &domain.NotFoundError{Entity: "resource", ID: id}
		}
		return 0, fmt.Errorf("%w: failed to get resource: %w", ErrInternal, err)
	}
	if !resource.Active {
		return 0, domain.NewValidationError("resource_id", fmt.Sprintf("resource id=%d is inactive", resource.ID))
	}

	occupying, err := uc.bookingRepo.ListOccupying(ctx, []int64{resource.ID}, start, end)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list bookings: %w", ErrInternal, err)
	}
	if len(occupying) > 0 {
		return 0, &domain.SlotConflictError{ResourceID: resource.ID, Start: start}
	}

	reserved, err := uc.requestRepo.ListApprovedUnbooked(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list approved requests: %w", ErrInternal, err)
	}
	if len(reserved) > 0 {
		return 0, &domain.SlotConflictError{ResourceID: resource.ID, Start: start}
	}

	return resource.ID, nil
}

// LookupVehicle ищет автомобиль в реестре автопарка и переводит ошибки клиента в доменные
func LookupVehicle(ctx context.Context, fleet FleetClient, plate string) (*domain.Vehicle, error) {
	plate = domain.NormalizePlate(plate)

	vehicle, err := fleet.GetVehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, fleetClient.ErrVehicleNotFound) {
			return nil, &domain.VehicleUnknownError{Plate: plate}
		}
		return nil, fmt.Errorf("%w: failed to get vehicle: %w", ErrInternal, err)
	}
	return vehicle, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
