package schedule_booking

import (
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
)

// Request модель запроса на постановку автомобиля в график
// Слот задаётся токеном либо парой (ResourceID, ScheduledAt); без подъёмника ингресо его не занимает
type Request struct {
	Plate        string
	SlotToken    *string
	ResourceID   *int64
	ScheduledAt  *time.Time
	DriverID     *int64
	Reason       string
	Notes        *string
	RequiredPart *string
	OdometerKm   *int
	Actor        domain.Actor
}

// Intake уже разрешённые данные для записи ингресо
// Используется и прямым планированием, и одобрением заявки
type Intake struct {
	VehicleID    int64
	Plate        string
	Slot         domain.SlotToken
	DriverID     *int64
	Reason       string
	Notes        *string
	RequiredPart *string
	OdometerKm   *int
	ScheduledBy  int64
}

// Response созданное ингресо
type Response struct {
	Booking *domain.Booking
	Token   string
}
