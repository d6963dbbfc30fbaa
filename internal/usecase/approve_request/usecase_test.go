package approve_request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-WorkshopService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-WorkshopService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WorkshopService/internal/usecase/schedule_booking"
	"github.com/m04kA/SMC-WorkshopService/pkg/ptr"
)

var clt = time.FixedZone("CLT", -3*3600)

type env struct {
	store    *memstore.Store
	lifts    []*domain.Resource
	notifier *memstore.Notifier
	uc       *UseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	clock := memstore.NewClock(time.Date(2026, 3, 2, 7, 30, 0, 0, clt))
	store := memstore.New()
	store.Clock = clock.Now
	lifts := store.SeedLifts()
	notifier := &memstore.Notifier{}

	schedule := domain.DefaultWorkshopSchedule()
	schedule.Location = clt

	scheduler := schedule_booking.NewUseCase(
		store.Bookings(), store.Resources(), store.Requests(), memstore.NewFleet(),
		store.TxManager(), schedule, memstore.NopLogger{},
	).WithTimeProvider(clock)

	uc := NewUseCase(store.Requests(), scheduler, notifier, store.TxManager(), schedule, memstore.NopLogger{}).
		WithTimeProvider(clock)

	return &env{store: store, lifts: lifts, notifier: notifier, uc: uc}
}

func (e *env) pending(t *testing.T, vehicleID int64, plate, reason string) *domain.EntryRequest {
	t.Helper()
	r, err := e.store.Requests().Create(context.Background(), &domain.EntryRequest{
		VehicleID:    vehicleID,
		VehiclePlate: plate,
		DriverID:     vehicleID + 1000,
		Reason:       reason,
		Status:       domain.RequestPending,
	})
	require.NoError(t, err)
	return r
}

func slot(hour int, resourceID int64) string {
	return domain.SlotToken{Start: time.Date(2026, 3, 3, hour, 0, 0, 0, clt), ResourceID: resourceID}.String()
}

func TestExecute_ApprovesAndSchedules(t *testing.T) {
	e := newEnv(t)
	req := e.pending(t, 100, "ABC123", "cambio de aceite")

	resp, err := e.uc.Execute(context.Background(), &Request{
		RequestID:  req.ID,
		SlotToken:  slot(9, e.lifts[0].ID),
		OdometerKm: ptr.Ptr(120500),
		Actor:      domain.Actor{ID: 7, Role: domain.RoleSupervisor},
	})
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, domain.BookingScheduled, b.Status)
	assert.Equal(t, e.lifts[0].ID, *b.ResourceID)
	assert.Equal(t, int64(1100), *b.DriverID)
	assert.Equal(t, "cambio de aceite", b.Reason)
	assert.Equal(t, 120500, *b.OdometerKm)
	assert.Equal(t, req.ID, *b.RequestID)

	stored, err := e.store.Requests().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, stored.Status)
	assert.Equal(t, b.ID, *stored.BookingID)
	assert.True(t, stored.EstimatedAt.Equal(b.ScheduledAt))
	assert.Equal(t, int64(7), *stored.ResponderID)
	assert.NotNil(t, stored.RespondedAt)

	sent := e.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notificationservice.TypeBookingScheduled, sent[0].Type)
	assert.Equal(t, int64(1100), sent[0].UserID)
	assert.Equal(t, "ABC123 - Ingreso Programado", sent[0].Title)
	assert.Equal(t, "ABC123", sent[0].Metadata["plate"])
}

func TestExecute_ReasonFallbacks(t *testing.T) {
	e := newEnv(t)

	withExplicit := e.pending(t, 100, "ABC123", "motivo chofer")
	resp, err := e.uc.Execute(context.Background(), &Request{
		RequestID: withExplicit.ID, SlotToken: slot(9, e.lifts[0].ID), Reason: ptr.Ptr("revisión general"),
	})
	require.NoError(t, err)
	assert.Equal(t, "revisión general", resp.Booking.Reason)

	empty := e.pending(t, 200, "XYZ789", "")
	resp, err = e.uc.Execute(context.Background(), &Request{RequestID: empty.ID, SlotToken: slot(9, e.lifts[1].ID)})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBookingReason, resp.Booking.Reason)
}

func TestExecute_SameSlotSecondApprovalConflicts(t *testing.T) {
	e := newEnv(t)
	first := e.pending(t, 100, "ABC123", "x")
	second := e.pending(t, 200, "XYZ789", "y")

	_, err := e.uc.Execute(context.Background(), &Request{RequestID: first.ID, SlotToken: slot(9, e.lifts[0].ID)})
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), &Request{RequestID: second.ID, SlotToken: slot(9, e.lifts[0].ID)})
	var conflict *domain.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, e.lifts[0].ID, conflict.ResourceID)

	// вторая заявка осталась в ожидании, уведомление одно
	stored, err := e.store.Requests().GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, stored.Status)
	assert.Nil(t, stored.BookingID)
	assert.Len(t, e.notifier.Sent(), 1)
}

func TestExecute_NotPending(t *testing.T) {
	e := newEnv(t)
	req := e.pending(t, 100, "ABC123", "x")

	_, err := e.uc.Execute(context.Background(), &Request{RequestID: req.ID, SlotToken: slot(9, e.lifts[0].ID)})
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), &Request{RequestID: req.ID, SlotToken: slot(10, e.lifts[0].ID)})
	var illegal *domain.IllegalTransitionError
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, string(domain.RequestApproved), illegal.From)
}

func TestExecute_NotFoundAndInvalidToken(t *testing.T) {
	e := newEnv(t)

	_, err := e.uc.Execute(context.Background(), &Request{RequestID: 999, SlotToken: slot(9, e.lifts[0].ID)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.uc.Execute(context.Background(), &Request{RequestID: 1, SlotToken: "2026-03-03 09:00|1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.uc.Execute(context.Background(), &Request{RequestID: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_VehicleAlreadyInWorkshopRollsBack(t *testing.T) {
	e := newEnv(t)
	req := e.pending(t, 100, "ABC123", "x")

	_, err := e.store.Bookings().Create(context.Background(), &domain.Booking{
		VehicleID:       100,
		ScheduledAt:     time.Date(2026, 3, 2, 8, 0, 0, 0, clt),
		DurationMinutes: 60,
		Status:          domain.BookingInProgress,
	})
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), &Request{RequestID: req.ID, SlotToken: slot(9, e.lifts[0].ID)})
	assert.ErrorIs(t, err, domain.ErrVehicleAlreadyInWorkshop)

	stored, err := e.store.Requests().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, stored.Status)
	assert.Empty(t, e.notifier.Sent())
}

// racingBookings видит слот свободным, но запись упирается в exclusion constraint,
// как при параллельном одобрении, прошедшем ту же проверку
type racingBookings struct {
	*memstore.BookingRepo
}

func (r racingBookings) ListOccupying(context.Context, []int64, time.Time, time.Time) ([]*domain.Booking, error) {
	return []*domain.Booking{}, nil
}

func (r racingBookings) Create(context.Context, *domain.Booking) (*domain.Booking, error) {
	return nil, bookingRepo.ErrSlotTaken
}

func TestExecute_WriteTimeConflictKeepsRequestPending(t *testing.T) {
	e := newEnv(t)
	req := e.pending(t, 100, "ABC123", "x")

	clock := memstore.NewClock(time.Date(2026, 3, 2, 7, 30, 0, 0, clt))
	schedule := domain.DefaultWorkshopSchedule()
	schedule.Location = clt
	scheduler := schedule_booking.NewUseCase(
		racingBookings{BookingRepo: e.store.Bookings()}, e.store.Resources(), e.store.Requests(), memstore.NewFleet(),
		e.store.TxManager(), schedule, memstore.NopLogger{},
	).WithTimeProvider(clock)
	uc := NewUseCase(e.store.Requests(), scheduler, e.notifier, e.store.TxManager(), schedule, memstore.NopLogger{}).
		WithTimeProvider(clock)

	_, err := uc.Execute(context.Background(), &Request{RequestID: req.ID, SlotToken: slot(9, e.lifts[0].ID)})

	var conflict *domain.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, e.lifts[0].ID, conflict.ResourceID)
	assert.True(t, conflict.Start.Equal(time.Date(2026, 3, 3, 9, 0, 0, 0, clt)))

	stored, err := e.store.Requests().GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, stored.Status)
	assert.Nil(t, stored.BookingID)
	assert.Nil(t, stored.EstimatedAt)
	assert.Empty(t, e.notifier.Sent())
}

func TestExecute_ConcurrentApprovalsSameSlot(t *testing.T) {
	e := newEnv(t)
	requests := []*domain.EntryRequest{
		e.pending(t, 100, "ABC123", "x"),
		e.pending(t, 200, "XYZ789", "y"),
	}

	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, r := range requests {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = e.uc.Execute(context.Background(), &Request{RequestID: id, SlotToken: slot(9, e.lifts[0].ID)})
		}(i, r.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSlotConflict)
	}
	assert.Equal(t, 1, succeeded)

	pending, err := e.store.Requests().ListPending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
