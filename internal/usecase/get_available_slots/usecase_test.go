package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	"github.com/m04kA/SMC-WorkshopService/pkg/ptr"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeResources struct {
	items []*domain.Resource
	err   error
}

func (f *fakeResources) List(_ context.Context, category *domain.ResourceCategory, activeOnly bool) ([]*domain.Resource, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Resource, 0)
	for _, r := range f.items {
		if activeOnly && !r.Active {
			continue
		}
		if category != nil && r.Category != *category {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeBookings struct {
	items   []*domain.Booking
	gotIDs  []int64
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeBookings) ListOccupying(_ context.Context, ids []int64, from, to time.Time) ([]*domain.Booking, error) {
	f.gotIDs, f.gotFrom, f.gotTo = ids, from, to
	return f.items, nil
}

type fakeRequests struct {
	items []*domain.EntryRequest
}

func (f *fakeRequests) ListApprovedUnbooked(context.Context, time.Time, time.Time) ([]*domain.EntryRequest, error) {
	return f.items, nil
}

func newUseCase(res *fakeResources, bookings *fakeBookings, requests *fakeRequests, now time.Time) *UseCase {
	schedule := domain.DefaultWorkshopSchedule()
	schedule.Location = clt
	return NewUseCase(res, bookings, requests, schedule, nopLogger{}).WithTimeProvider(fixedTime{now})
}

func TestExecute_DefaultWindow(t *testing.T) {
	res := &fakeResources{items: append(lifts(), &domain.Resource{ID: 3, Category: domain.ResourceScissorLift, Number: 1, Active: false})}
	bookings := &fakeBookings{items: []*domain.Booking{
		{ID: 5, ResourceID: ptr.Ptr(int64(1)), ScheduledAt: time.Date(2025, 11, 3, 9, 0, 0, 0, clt), DurationMinutes: 60, Status: domain.BookingScheduled},
	}}
	requests := &fakeRequests{items: []*domain.EntryRequest{
		{ID: 9, Status: domain.RequestApproved, EstimatedAt: ptr.Ptr(time.Date(2025, 11, 3, 11, 0, 0, 0, clt))},
	}}
	now := time.Date(2025, 11, 3, 7, 0, 0, 0, clt)

	resp, err := newUseCase(res, bookings, requests, now).Execute(context.Background(), &Request{})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, clt), resp.From)
	assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, clt), resp.To)
	assert.Equal(t, []int64{1, 2}, bookings.gotIDs)
	require.Len(t, resp.Days, 7)

	first := resp.Days[0].Resources[0].Slots
	assert.False(t, first[0].Occupied)
	assert.True(t, first[1].Occupied)
	assert.True(t, first[3].Occupied, "reserved by approved request")
}

func TestExecute_SingleResource(t *testing.T) {
	now := time.Date(2025, 11, 3, 7, 0, 0, 0, clt)
	uc := newUseCase(&fakeResources{items: lifts()}, &fakeBookings{}, &fakeRequests{}, now)

	resp, err := uc.Execute(context.Background(), &Request{Days: ptr.Ptr(1), ResourceID: ptr.Ptr(int64(2))})

	require.NoError(t, err)
	require.Len(t, resp.Days, 1)
	require.Len(t, resp.Days[0].Resources, 1)
	assert.Equal(t, int64(2), resp.Days[0].Resources[0].Resource.ID)
}

func TestExecute_UnknownResource(t *testing.T) {
	uc := newUseCase(&fakeResources{items: lifts()}, &fakeBookings{}, &fakeRequests{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{ResourceID: ptr.Ptr(int64(77))})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecute_Validation(t *testing.T) {
	uc := newUseCase(&fakeResources{}, &fakeBookings{}, &fakeRequests{}, time.Now())
	bad := domain.ResourceCategory("GRUA")

	_, err := uc.Execute(context.Background(), &Request{Days: ptr.Ptr(40)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Execute(context.Background(), &Request{Category: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_RepositoryFailure(t *testing.T) {
	uc := newUseCase(&fakeResources{err: errors.New("db down")}, &fakeBookings{}, &fakeRequests{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{})

	assert.ErrorIs(t, err, ErrInternal)
}
