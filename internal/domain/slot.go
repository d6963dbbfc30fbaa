package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const slotTokenSeparator = "|"

// SlotToken непрозрачный идентификатор выбранного слота: время начала + подъёмник
// Текстовая форма: "YYYY-MM-DDTHH:MM|<resourceID>"; без "|<resourceID>" слот не привязан к подъёмнику
type SlotToken struct {
	Start      time.Time
	ResourceID int64 // 0: без подъёмника
}

// HasResource привязан ли слот к подъёмнику
func (t SlotToken) HasResource() bool {
	return t.ResourceID > 0
}

// String форматирует токен (время в зоне Start)
func (t SlotToken) String() string {
	if !t.HasResource() {
		return t.Start.Format(SlotTokenTimeFormat)
	}
	return t.Start.Format(SlotTokenTimeFormat) + slotTokenSeparator + strconv.FormatInt(t.ResourceID, 10)
}

// ParseSlotToken разбирает токен; время интерпретируется в зоне мастерской loc.
// Разделитель ищется с конца строки
func ParseSlotToken(raw string, loc *time.Location) (SlotToken, error) {
	raw = strings.TrimSpace(raw)

	idx := strings.LastIndex(raw, slotTokenSeparator)
	if idx < 0 {
		start, err := time.ParseInLocation(SlotTokenTimeFormat, raw, loc)
		if err != nil {
			return SlotToken{}, NewValidationError("slot", fmt.Sprintf("malformed slot token %q", raw))
		}
		return SlotToken{Start: start}, nil
	}
	if idx == 0 || idx == len(raw)-1 {
		return SlotToken{}, NewValidationError("slot", fmt.Sprintf("malformed slot token %q", raw))
	}

	start, err := time.ParseInLocation(SlotTokenTimeFormat, raw[:idx], loc)
	if err != nil {
		return SlotToken{}, NewValidationError("slot", fmt.Sprintf("invalid slot time %q", raw[:idx]))
	}

	resourceID, err := strconv.ParseInt(raw[idx+1:], 10, 64)
	if err != nil || resourceID <= 0 {
		return SlotToken{}, NewValidationError("slot", fmt.Sprintf("invalid resource id %q", raw[idx+1:]))
	}

	return SlotToken{Start: start, ResourceID: resourceID}, nil
}

// Slot кандидат (день, час, подъёмник)
type Slot struct {
	Start      time.Time
	End        time.Time
	ResourceID int64
	Occupied   bool
	Token      SlotToken
}

// ResourceSlots слоты одного подъёмника за день
type ResourceSlots struct {
	Resource *Resource
	Slots    []Slot
}

// DaySlotGroup слоты дня, сгруппированные по подъёмникам в порядке реестра
type DaySlotGroup struct {
	Day       time.Time
	Resources []ResourceSlots
}
