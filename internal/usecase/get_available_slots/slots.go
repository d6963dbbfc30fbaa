package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// SlotInput всё, что нужно для расчёта сетки; расчёт не обращается к хранилищу
type SlotInput struct {
	Resources    []*domain.Resource // активные подъёмники в порядке реестра
	FirstDay     time.Time          // полночь первого дня в зоне мастерской
	Days         int
	StartHour    int
	EndHour      int // не включительно
	SlotMinutes  int
	Now          time.Time
	Bookings     []*domain.Booking // ингресо, пересекающиеся с окном
	Reservations []time.Time       // estimated_at одобренных заявок без ингресо
}

// ComputeSlots строит сетку (день, час, подъёмник)
//
// Слот в прошлом отбрасывается. Слот занят, если его пересекает ингресо этого подъёмника
// в статусе PROGRAMADO/EN_PROCESO (смежные интервалы не пересекаются) или если в его окно
// попадает estimated_at одобренной заявки без ингресо: такая заявка занимает час на всех подъёмниках.
// Подъёмник без слотов в какой-то день в этот день не выводится, как и день без подъёмников
func ComputeSlots(in SlotInput) []domain.DaySlotGroup {
	result := make([]domain.DaySlotGroup, 0, in.Days)
	if in.SlotMinutes <= 0 || len(in.Resources) == 0 {
		return result
	}

	slotDuration := time.Duration(in.SlotMinutes) * time.Minute
	loc := in.FirstDay.Location()

	for d := 0; d < in.Days; d++ {
		day := time.Date(in.FirstDay.Year(), in.FirstDay.Month(), in.FirstDay.Day()+d, 0, 0, 0, 0, loc)
		starts := dayStarts(day, in.StartHour, in.EndHour, in.SlotMinutes, in.Now)
		if len(starts) == 0 {
			continue
		}

		group := domain.DaySlotGroup{Day: day, Resources: make([]domain.ResourceSlots, 0, len(in.Resources))}

		for _, res := range in.Resources {
			if !res.Active {
				continue
			}

			slots := make([]domain.Slot, 0, len(starts))
			for _, start := range starts {
				end := start.Add(slotDuration)
				slots = append(slots, domain.Slot{
					Start:      start,
					End:        end,
					ResourceID: res.ID,
					Occupied:   isOccupied(res.ID, start, end, in.Bookings, in.Reservations),
					Token:      domain.SlotToken{Start: start, ResourceID: res.ID},
				})
			}

			group.Resources = append(group.Resources, domain.ResourceSlots{Resource: res, Slots: slots})
		}

		if len(group.Resources) > 0 {
			result = append(result, group)
		}
	}

	return result
}

// dayStarts начала слотов дня, которые ещё не наступили
// Слот должен целиком помещаться в рабочие часы
func dayStarts(day time.Time, startHour, endHour, slotMinutes int, now time.Time) []time.Time {
	starts := make([]time.Time, 0)
	for m := startHour * 60; m+slotMinutes <= endHour*60; m += slotMinutes {
		start := time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
		if start.Before(now) {
			continue
		}
		starts = append(starts, start)
	}
	return starts
}

func isOccupied(resourceID int64, start, end time.Time, bookings []*domain.Booking, reservations []time.Time) bool {
	for _, b := range bookings {
		if b.ResourceID == nil || *b.ResourceID != resourceID {
			continue
		}
		if b.OccupiesResource() && b.Overlaps(start, end) {
			return true
		}
	}

	for _, r := range reservations {
		if !r.Before(start) && r.Before(end) {
			return true
		}
	}

	return false
}
