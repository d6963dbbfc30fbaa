package submit_request

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	requestRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/request"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/schedule_booking"
)

// UseCase use case подачи заявки на въезд
type UseCase struct {
	requestRepo RequestRepository
	bookingRepo BookingRepository
	fleetClient FleetClient
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	requestRepo RequestRepository,
	bookingRepo BookingRepository,
	fleetClient FleetClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		requestRepo: requestRepo,
		bookingRepo: bookingRepo,
		fleetClient: fleetClient,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute создает заявку в статусе PENDIENTE
// На один автомобиль не более одной активной заявки, и автомобиль не должен уже быть в мастерской
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SubmitRequest: plate=%s, driver=%d", req.Plate, req.Actor.ID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SubmitRequest: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем автомобиль в реестре автопарка
	vehicle, err := schedule_booking.LookupVehicle(ctx, uc.fleetClient, req.Plate)
	if err != nil {
		if errors.Is(err, domain.ErrVehicleUnknown) {
			uc.logger.Warn("SubmitRequest: unknown vehicle plate=%s", req.Plate)
			return nil, err
		}
		uc.logger.Error("SubmitRequest: vehicle lookup failed for plate=%s: %v", req.Plate, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	var result *domain.EntryRequest

	// 3. Проверки уникальности и запись в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		active, err := uc.requestRepo.GetActiveByVehicle(txCtx, vehicle.ID)
		if err != nil && !errors.Is(err, requestRepo.ErrRequestNotFound) {
			return fmt.Errorf("%w: failed to get active request: %w", ErrInternal, err)
		}
		if active != nil {
			return &domain.DuplicateActiveRequestError{VehicleID: vehicle.ID, Plate: vehicle.Plate}
		}

		booking, err := uc.bookingRepo.GetActiveByVehicle(txCtx, vehicle.ID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return fmt.Errorf("%w: failed to get active booking: %w", ErrInternal, err)
		}
		if booking != nil {
			return &domain.VehicleAlreadyInWorkshopError{VehicleID: vehicle.ID, Plate: vehicle.Plate}
		}

		created, err := uc.requestRepo.Create(txCtx, &domain.EntryRequest{
			VehicleID:    vehicle.ID,
			VehiclePlate: vehicle.Plate,
			DriverID:     req.Actor.ID,
			Reason:       strings.TrimSpace(req.Reason),
			Phone:        optionalText(req.Phone),
			Route:        optionalText(req.Route),
			Status:       domain.RequestPending,
		})
		if err != nil {
			if errors.Is(err, requestRepo.ErrActiveRequestExists) {
				return &domain.DuplicateActiveRequestError{VehicleID: vehicle.ID, Plate: vehicle.Plate}
			}
			return fmt.Errorf("%w: failed to create request: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("SubmitRequest: vehicle=%d: %v", vehicle.ID, err)
		} else {
			uc.logger.Warn("SubmitRequest: vehicle=%d rejected: %v", vehicle.ID, err)
		}
		return nil, err
	}

	uc.logger.Info("SubmitRequest: created request id=%d for vehicle=%d", result.ID, vehicle.ID)
	return &Response{Request: result}, nil
}
