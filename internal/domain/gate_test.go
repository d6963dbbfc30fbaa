package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGateEntry_DurationMinutes(t *testing.T) {
	entered := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	exited := entered.Add(95 * time.Minute)
	skewed := entered.Add(-10 * time.Minute)

	tests := []struct {
		name  string
		entry GateEntry
		now   time.Time
		want  int
	}{
		{"inside counts to now", GateEntry{EnteredAt: entered}, entered.Add(20*time.Minute + 59*time.Second), 20},
		{"exited ignores now", GateEntry{EnteredAt: entered, ExitedAt: &exited}, entered.Add(10 * time.Hour), 95},
		{"exit before entry", GateEntry{EnteredAt: entered, ExitedAt: &skewed}, entered, 0},
		{"clock behind entry", GateEntry{EnteredAt: entered}, skewed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.DurationMinutes(tt.now))
		})
	}
}
