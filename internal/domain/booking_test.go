package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooking_Apply(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		action  BookingAction
		want    BookingStatus
		wantErr bool
	}{
		{"check in scheduled", BookingScheduled, ActionCheckIn, BookingInProgress, false},
		{"cancel scheduled", BookingScheduled, ActionCancel, BookingCancelled, false},
		{"pause in progress", BookingInProgress, ActionPause, BookingPaused, false},
		{"resume paused", BookingPaused, ActionResume, BookingInProgress, false},
		{"terminate in progress", BookingInProgress, ActionTerminate, BookingFinished, false},
		{"withdraw finished", BookingFinished, ActionWithdraw, BookingWithdrawn, false},
		{"terminate paused is illegal", BookingPaused, ActionTerminate, BookingPaused, true},
		{"cancel in progress is illegal", BookingInProgress, ActionCancel, BookingInProgress, true},
		{"withdraw scheduled is illegal", BookingScheduled, ActionWithdraw, BookingScheduled, true},
		{"nothing leaves withdrawn", BookingWithdrawn, ActionCheckIn, BookingWithdrawn, true},
		{"nothing leaves cancelled", BookingCancelled, ActionCheckIn, BookingCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{ID: 5, Status: tt.from}
			err := b.Apply(tt.action)

			if tt.wantErr {
				var illegal *IllegalTransitionError
				require.True(t, errors.As(err, &illegal))
				assert.Equal(t, int64(5), illegal.ID)
				assert.Equal(t, string(tt.from), illegal.From)
				assert.ErrorIs(t, err, ErrIllegalTransition)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, b.Status)
		})
	}
}

func TestBooking_Overlaps(t *testing.T) {
	nine := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	b := &Booking{ScheduledAt: nine, DurationMinutes: 60}

	assert.True(t, b.Overlaps(nine, nine.Add(time.Hour)))
	assert.True(t, b.Overlaps(nine.Add(30*time.Minute), nine.Add(90*time.Minute)))
	assert.False(t, b.Overlaps(nine.Add(time.Hour), nine.Add(2*time.Hour)), "adjacent windows do not overlap")
	assert.False(t, b.Overlaps(nine.Add(-time.Hour), nine), "adjacent windows do not overlap")
}

func TestComputeBookingMetrics(t *testing.T) {
	start := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	finish := start.Add(3 * time.Hour)
	pauseEnd := start.Add(90 * time.Minute)

	b := &Booking{StartedAt: &start, FinishedAt: &finish}
	pauses := []*Pause{
		{StartedAt: start.Add(time.Hour), EndedAt: &pauseEnd},
		{StartedAt: start.Add(2 * time.Hour)}, // открытая пауза не учитывается
	}

	m := ComputeBookingMetrics(b, pauses)

	require.NotNil(t, m.TotalDurationMinutes)
	require.NotNil(t, m.EffectiveMinutes)
	assert.Equal(t, 180, *m.TotalDurationMinutes)
	assert.Equal(t, 30, m.PauseMinutes)
	assert.Equal(t, 150, *m.EffectiveMinutes)
}

func TestComputeBookingMetrics_UndefinedUntilFinished(t *testing.T) {
	start := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	m := ComputeBookingMetrics(&Booking{StartedAt: &start}, nil)

	assert.Nil(t, m.TotalDurationMinutes)
	assert.Nil(t, m.EffectiveMinutes)
	assert.Zero(t, m.PauseMinutes)
}

func TestAppendNote(t *testing.T) {
	at := time.Date(2025, 11, 3, 9, 5, 0, 0, time.UTC)

	first := AppendNote(nil, "  llegó con neumático bajo ", at)
	require.NotNil(t, first)
	assert.Equal(t, "[03/11/2025 09:05] llegó con neumático bajo", *first)

	second := AppendNote(first, "revisado", at.Add(time.Hour))
	assert.Equal(t, "[03/11/2025 09:05] llegó con neumático bajo\n[03/11/2025 10:05] revisado", *second)

	assert.Equal(t, first, AppendNote(first, "   ", at))
}

func TestPause_CloseClampsToStart(t *testing.T) {
	start := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	p := &Pause{StartedAt: start}
	assert.True(t, p.IsOpen())

	p.Close(start.Add(-time.Minute))

	d, ok := p.DurationMinutes()
	require.True(t, ok)
	assert.Equal(t, 0, d)
	assert.False(t, p.IsOpen())
}
