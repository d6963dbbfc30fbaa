package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// Request модель запроса сетки слотов
type Request struct {
	Days       *int                     // Количество дней начиная с сегодняшнего (по умолчанию из конфигурации)
	Category   *domain.ResourceCategory // Только подъёмники категории (опционально)
	ResourceID *int64                   // Только один подъёмник (опционально)
}

// Response сетка слотов
type Response struct {
	From        time.Time             // Начало окна (полночь сегодняшнего дня в зоне мастерской)
	To          time.Time             // Конец окна, не включительно
	SlotMinutes int                   // Длительность слота
	Days        []domain.DaySlotGroup // Дни -> подъёмники -> слоты
}
