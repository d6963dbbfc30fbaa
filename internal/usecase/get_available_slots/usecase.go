package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// UseCase use case для получения сетки слотов подъёмников
type UseCase struct {
	resourceRepo ResourceRepository
	bookingRepo  BookingRepository
	requestRepo  RequestRepository
	schedule     domain.WorkshopSchedule
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	resourceRepo ResourceRepository,
	bookingRepo BookingRepository,
	requestRepo RequestRepository,
	schedule domain.WorkshopSchedule,
	logger Logger,
) *UseCase {
	return &UseCase{
		resourceRepo: resourceRepo,
		bookingRepo:  bookingRepo,
		requestRepo:  requestRepo,
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

// Execute выполняет use case получения слотов
// Только чтение: результат может устареть к моменту записи, поэтому запись перепроверяет занятость
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	days := uc.schedule.DefaultDays
	if req.Days != nil {
		days = *req.Days
	}

	// 2. Окно расчёта: с полуночи сегодняшнего дня на days дней
	now := uc.timeProvider.Now().In(uc.schedule.Location)
	from := uc.schedule.StartOfDay(now)
	to := from.AddDate(0, 0, days)

	uc.logger.Info("GetAvailableSlots: from=%s, days=%d", from.Format(domain.DateFormat), days)

	// 3. Активные подъёмники в порядке реестра
	resources, err := uc.resourceRepo.List(ctx, req.Category, true)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list resources: %v", err)
		return nil, fmt.Errorf("%w: failed to list resources: %v", ErrInternal, err)
	}

	if req.ResourceID != nil {
		resources = filterResource(resources, *req.ResourceID)
		if len(resources) == 0 {
			uc.logger.Warn("GetAvailableSlots: resource id=%d not found or inactive", *req.ResourceID)
			return nil, &domain.NotFoundError{Entity: "resource", ID: *req.ResourceID}
		}
	}

	ids := make([]int64, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}

	// 4. Занятость: ингресо и одобренные заявки без ингресо
	bookings, err := uc.bookingRepo.ListOccupying(ctx, ids, from, to)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}

	approved, err := uc.requestRepo.ListApprovedUnbooked(ctx, from, to)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list approved requests: %v", err)
		return nil, fmt.Errorf("%w: failed to list approved requests: %v", ErrInternal, err)
	}

	reservations := make([]time.Time, 0, len(approved))
	for _, r := range approved {
		if r.EstimatedAt != nil {
			reservations = append(reservations, *r.EstimatedAt)
		}
	}

	// 5. Расчёт сетки
	groups := ComputeSlots(SlotInput{
		Resources:    resources,
		FirstDay:     from,
		Days:         days,
		StartHour:    uc.schedule.DayStartHour,
		EndHour:      uc.schedule.DayEndHour,
		SlotMinutes:  uc.schedule.SlotMinutes,
		Now:          now,
		Bookings:     bookings,
		Reservations: reservations,
	})

	uc.logger.Info("GetAvailableSlots: %d days, %d resources, %d bookings, %d reservations",
		len(groups), len(resources), len(bookings), len(reservations))

	return &Response{
		From:        from,
		To:          to,
		SlotMinutes: uc.schedule.SlotMinutes,
		Days:        groups,
	}, nil
}

func filterResource(resources []*domain.Resource, id int64) []*domain.Resource {
	for _, r := range resources {
		if r.ID == id {
			return []*domain.Resource{r}
		}
	}
	return nil
}
