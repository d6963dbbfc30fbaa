package schedule_booking

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
	"github.com/m04kA/SMC-WorkshopService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WorkshopService/pkg/ptr"
)

var clt = time.FixedZone("CLT", -3*3600)

type env struct {
	store *memstore.Store
	lifts []*domain.Resource
	uc    *UseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()

	clock := memstore.NewClock(time.Date(2026, 3, 2, 7, 30, 0, 0, clt))
	store := memstore.New()
	store.Clock = clock.Now
	lifts := store.SeedLifts()

	fleet := memstore.NewFleet(
		&domain.Vehicle{ID: 100, Plate: "ABCD12", Active: true},
		&domain.Vehicle{ID: 200, Plate: "WXYZ98", Active: true},
		&domain.Vehicle{ID: 300, Plate: "OLD001", Active: false},
	)

	schedule := domain.DefaultWorkshopSchedule()
	schedule.Location = clt

	uc := NewUseCase(
		store.Bookings(), store.Resources(), store.Requests(), fleet,
		store.TxManager(), schedule, memstore.NopLogger{},
	).WithTimeProvider(clock)

	return &env{store: store, lifts: lifts, uc: uc}
}

func token(start time.Time, resourceID int64) *string {
	return ptr.Ptr(domain.SlotToken{Start: start, ResourceID: resourceID}.String())
}

func TestExecute_ByToken(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)

	resp, err := e.uc.Execute(context.Background(), &Request{
		Plate:     " abcd12 ",
		SlotToken: token(start, e.lifts[0].ID),
		Notes:     ptr.Ptr("frenos"),
		Actor:     domain.Actor{ID: 7, Role: domain.RoleSupervisor},
	})
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, domain.BookingScheduled, b.Status)
	assert.Equal(t, int64(100), b.VehicleID)
	assert.Equal(t, "ABCD12", b.VehiclePlate)
	assert.Equal(t, e.lifts[0].ID, *b.ResourceID)
	assert.True(t, b.ScheduledAt.Equal(start))
	assert.Equal(t, 60, b.DurationMinutes)
	assert.Equal(t, domain.DefaultBookingReason, b.Reason)
	assert.Equal(t, int64(7), *b.ScheduledBy)
	require.NotNil(t, b.Notes)
	assert.Equal(t, "[02/03/2026 07:30] frenos", *b.Notes)
	assert.Equal(t, "2026-03-02T10:00|1", resp.Token)
}

func TestExecute_ExplicitSlot(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC) // 09:00 CLT

	resp, err := e.uc.Execute(context.Background(), &Request{
		Plate:       "WXYZ98",
		ResourceID:  ptr.Ptr[int64](e.lifts[2].ID),
		ScheduledAt: &start,
		Reason:      "mantencion",
	})
	require.NoError(t, err)
	assert.True(t, resp.Booking.ScheduledAt.Equal(start))
	assert.Equal(t, "mantencion", resp.Booking.Reason)
}

func TestExecute_Validation(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)

	tests := []struct {
		name string
		req  *Request
	}{
		{"empty plate", &Request{Plate: " ", SlotToken: token(start, 1)}},
		{"no slot", &Request{Plate: "ABCD12"}},
		{"token and explicit", &Request{Plate: "ABCD12", SlotToken: token(start, 1), ResourceID: ptr.Ptr[int64](1)}},
		{"resource without time", &Request{Plate: "ABCD12", ResourceID: ptr.Ptr[int64](1)}},
		{"before opening", &Request{Plate: "ABCD12", ScheduledAt: ptr.Ptr(time.Date(2026, 3, 3, 3, 17, 0, 0, clt))}},
		{"off grid", &Request{Plate: "ABCD12", SlotToken: token(time.Date(2026, 3, 3, 9, 17, 0, 0, clt), 1)}},
		{"closing hour", &Request{Plate: "ABCD12", SlotToken: token(time.Date(2026, 3, 3, 18, 0, 0, 0, clt), 1)}},
		{"malformed token", &Request{Plate: "ABCD12", SlotToken: ptr.Ptr("tomorrow")}},
		{"negative odometer", &Request{Plate: "ABCD12", SlotToken: token(start, 1), OdometerKm: ptr.Ptr(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestExecute_PastSlot(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 7, 0, 0, 0, clt)

	_, err := e.uc.Execute(context.Background(), &Request{Plate: "ABCD12", SlotToken: token(start, e.lifts[0].ID)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_UnknownVehicle(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)

	for _, plate := range []string{"NOPE00", "OLD001"} {
		_, err := e.uc.Execute(context.Background(), &Request{Plate: plate, SlotToken: token(start, e.lifts[0].ID)})

		var unknown *domain.VehicleUnknownError
		require.True(t, errors.As(err, &unknown), plate)
		assert.Equal(t, plate, unknown.Plate)
	}
}

func TestExecute_SlotTaken(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)
	ctx := context.Background()

	_, err := e.uc.Execute(ctx, &Request{Plate: "ABCD12", SlotToken: token(start, e.lifts[0].ID)})
	require.NoError(t, err)

	_, err = e.uc.Execute(ctx, &Request{Plate: "WXYZ98", SlotToken: token(start, e.lifts[0].ID)})
	var conflict *domain.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, e.lifts[0].ID, conflict.ResourceID)

	// другой подъёмник в тот же час свободен
	_, err = e.uc.Execute(ctx, &Request{Plate: "WXYZ98", SlotToken: token(start, e.lifts[1].ID)})
	assert.NoError(t, err)
}

func TestExecute_ReservedByApprovedRequest(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 11, 0, 0, 0, clt)

	_, err := e.store.Requests().Create(context.Background(), &domain.EntryRequest{
		VehicleID:   200,
		DriverID:    5,
		Status:      domain.RequestApproved,
		EstimatedAt: ptr.Ptr(start.Add(30 * time.Minute)),
	})
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), &Request{Plate: "ABCD12", SlotToken: token(start, e.lifts[3].ID)})
	assert.ErrorIs(t, err, domain.ErrSlotConflict)
}

func TestExecute_VehicleAlreadyInWorkshop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.uc.Execute(ctx, &Request{Plate: "ABCD12", SlotToken: token(time.Date(2026, 3, 2, 10, 0, 0, 0, clt), e.lifts[0].ID)})
	require.NoError(t, err)

	_, err = e.uc.Execute(ctx, &Request{Plate: "ABCD12", SlotToken: token(time.Date(2026, 3, 4, 10, 0, 0, 0, clt), e.lifts[1].ID)})
	var busy *domain.VehicleAlreadyInWorkshopError
	require.True(t, errors.As(err, &busy))
	assert.Equal(t, int64(100), busy.VehicleID)
}

func TestExecute_ResourceChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)

	_, err := e.uc.Execute(ctx, &Request{Plate: "ABCD12", SlotToken: token(start, 999)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, e.store.Resources().SetActive(ctx, e.lifts[0].ID, false))
	_, err = e.uc.Execute(ctx, &Request{Plate: "ABCD12", SlotToken: token(start, e.lifts[0].ID)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_FailedAttemptLeavesNoBooking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.uc.Execute(ctx, &Request{Plate: "ABCD12", SlotToken: token(time.Date(2026, 3, 2, 10, 0, 0, 0, clt), 999)})
	require.Error(t, err)

	_, err = e.store.Bookings().GetActiveByVehicle(ctx, 100)
	assert.Error(t, err)
}

func TestExecute_WithoutResource(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)

	resp, err := e.uc.Execute(ctx, &Request{Plate: "ABCD12", ScheduledAt: &start})
	require.NoError(t, err)
	assert.Nil(t, resp.Booking.ResourceID)
	assert.Equal(t, domain.BookingScheduled, resp.Booking.Status)
	assert.Equal(t, "2026-03-02T10:00", resp.Token)

	// ингресо без подъёмника не занимает ни один подъёмник
	occupying, err := e.store.Bookings().ListOccupying(ctx, []int64{e.lifts[0].ID}, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, occupying)

	// токен без подъёмника принимается так же
	resp, err = e.uc.Execute(ctx, &Request{Plate: "WXYZ98", SlotToken: ptr.Ptr("2026-03-02T10:00")})
	require.NoError(t, err)
	assert.Nil(t, resp.Booking.ResourceID)

	_, err = e.uc.Execute(ctx, &Request{Plate: "ABCD12", ScheduledAt: &start})
	assert.ErrorIs(t, err, domain.ErrVehicleAlreadyInWorkshop)
}

// racingBookings пропускает проверку занятости, а запись упирается в exclusion constraint
type racingBookings struct {
	*memstore.BookingRepo
}

func (r racingBookings) ListOccupying(context.Context, []int64, time.Time, time.Time) ([]*domain.Booking, error) {
	return []*domain.Booking{}, nil
}

func (r racingBookings) Create(context.Context, *domain.Booking) (*domain.Booking, error) {
	return nil, bookingRepo.ErrSlotTaken
}

func TestExecute_WriteTimeConflict(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)

	schedule := domain.DefaultWorkshopSchedule()
	schedule.Location = clt
	uc := NewUseCase(
		racingBookings{BookingRepo: e.store.Bookings()}, e.store.Resources(), e.store.Requests(),
		memstore.NewFleet(&domain.Vehicle{ID: 100, Plate: "ABCD12", Active: true}),
		e.store.TxManager(), schedule, memstore.NopLogger{},
	).WithTimeProvider(memstore.NewClock(time.Date(2026, 3, 2, 7, 30, 0, 0, clt)))

	_, err := uc.Execute(context.Background(), &Request{Plate: "ABCD12", SlotToken: token(start, e.lifts[0].ID)})

	var conflict *domain.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, e.lifts[0].ID, conflict.ResourceID)
	assert.True(t, conflict.Start.Equal(start))
	assert.NotErrorIs(t, err, ErrInternal)
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, clt)

	plates := []string{"ABCD12", "WXYZ98"}
	errs := make([]error, len(plates))
	var wg sync.WaitGroup
	for i, plate := range plates {
		wg.Add(1)
		go func(i int, plate string) {
			defer wg.Done()
			_, errs[i] = e.uc.Execute(context.Background(), &Request{Plate: plate, SlotToken: token(start, e.lifts[0].ID)})
		}(i, plate)
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

	occupying, err := e.store.Bookings().ListOccupying(context.Background(), []int64{e.lifts[0].ID}, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, occupying, 1)
}
