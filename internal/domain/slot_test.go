package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotToken_RoundTrip(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)
	token := SlotToken{Start: time.Date(2025, 11, 3, 9, 0, 0, 0, loc), ResourceID: 1}

	assert.Equal(t, "2025-11-03T09:00|1", token.String())

	parsed, err := ParseSlotToken(token.String(), loc)
	require.NoError(t, err)
	assert.True(t, parsed.Start.Equal(token.Start))
	assert.Equal(t, int64(1), parsed.ResourceID)
}

func TestParseSlotToken_WithoutResource(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)

	parsed, err := ParseSlotToken("2025-11-03T09:00", loc)
	require.NoError(t, err)
	assert.False(t, parsed.HasResource())
	assert.True(t, parsed.Start.Equal(time.Date(2025, 11, 3, 9, 0, 0, 0, loc)))
	assert.Equal(t, "2025-11-03T09:00", parsed.String())
}

func TestWorkshopSchedule_OnGrid(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)
	s := WorkshopSchedule{Location: loc, DayStartHour: 8, DayEndHour: 18, SlotMinutes: 60}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"first slot", time.Date(2025, 11, 3, 8, 0, 0, 0, loc), true},
		{"last slot", time.Date(2025, 11, 3, 17, 0, 0, 0, loc), true},
		{"other zone same instant", time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC), true},
		{"before opening", time.Date(2025, 11, 3, 3, 0, 0, 0, loc), false},
		{"closing hour", time.Date(2025, 11, 3, 18, 0, 0, 0, loc), false},
		{"off grid minutes", time.Date(2025, 11, 3, 9, 17, 0, 0, loc), false},
		{"seconds", time.Date(2025, 11, 3, 9, 0, 30, 0, loc), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.OnGrid(tt.at))
		})
	}

	half := WorkshopSchedule{Location: loc, DayStartHour: 8, DayEndHour: 18, SlotMinutes: 30}
	assert.True(t, half.OnGrid(time.Date(2025, 11, 3, 17, 30, 0, 0, loc)))
	assert.False(t, half.OnGrid(time.Date(2025, 11, 3, 17, 45, 0, 0, loc)))
}

func TestParseSlotToken_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"tomorrow",
		"2025-11-03T09:00|",
		"|3",
		"2025-11-03 09:00|3",
		"2025-11-03T09:00|abc",
		"2025-11-03T09:00|0",
		"2025-11-03T09:00|1|2",
	} {
		_, err := ParseSlotToken(raw, time.UTC)
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
}

func TestEntryRequest_IsOverdue(t *testing.T) {
	created := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	r := &EntryRequest{Status: RequestPending, CreatedAt: created}

	assert.False(t, r.IsOverdue(created.AddDate(0, 0, 7), 7))
	assert.True(t, r.IsOverdue(created.AddDate(0, 0, 8), 7))

	r.Status = RequestApproved
	assert.False(t, r.IsOverdue(created.AddDate(0, 0, 30), 7))
}

func TestEntryRequest_TransitionTo(t *testing.T) {
	r := &EntryRequest{ID: 1, Status: RequestPending}
	require.NoError(t, r.TransitionTo(RequestApproved))
	require.NoError(t, r.TransitionTo(RequestCompleted))
	require.NoError(t, r.TransitionTo(RequestWithdrawn))
	assert.ErrorIs(t, r.TransitionTo(RequestPending), ErrIllegalTransition)
}

func TestWorkshopSchedule_Validate(t *testing.T) {
	s := DefaultWorkshopSchedule()
	require.NoError(t, s.Validate())

	broken := s
	broken.DayStartHour = 18
	assert.Error(t, broken.Validate())

	broken = s
	broken.SlotMinutes = 0
	assert.Error(t, broken.Validate())

	broken = s
	broken.DefaultDays = MaxScheduleDays + 1
	assert.Error(t, broken.Validate())
}
