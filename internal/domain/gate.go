package domain

import "time"

// GateEntry запись охраны о въезде автомобиля на территорию
type GateEntry struct {
	ID         int64
	VehicleID  int64
	Plate      string
	DriverName *string
	Reason     *string
	RecordedBy int64
	EnteredAt  time.Time
	ExitedAt   *time.Time
	BookingID  *int64 // ингресо, к которому привязан въезд (если нашлось)
	CreatedAt  time.Time
}

// IsInside автомобиль ещё не выехал
func (g *GateEntry) IsInside() bool {
	return g.ExitedAt == nil
}

// DurationMinutes время на территории; пока автомобиль не выехал, считается до now
func (g *GateEntry) DurationMinutes(now time.Time) int {
	end := now
	if g.ExitedAt != nil {
		end = *g.ExitedAt
	}
	d := end.Sub(g.EnteredAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
