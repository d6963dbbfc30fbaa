package domain

// Параметры сетки слотов по умолчанию
const (
	DefaultSlotDurationMinutes = 60
	DefaultDayStartHour        = 8
	DefaultDayEndHour          = 18 // не включительно: последний слот начинается в 17:00
	DefaultScheduleDays        = 7
	MaxScheduleDays            = 31
	DefaultOverdueRequestDays  = 7
	DefaultTimezone            = "America/Santiago"
)

// Ограничения бизнес-валидации
const (
	MaxReasonLength      = 1000
	MaxNotesLength       = 2000
	MaxTaskTitleLength   = 200
	MaxCommentLength     = 2000
	MaxPlateLength       = 10
	MaxEstimatedMinutes  = 7 * 24 * 60
	DefaultBookingReason = "Solicitud de ingreso del chofer"
)

// Форматы времени
const (
	DateFormat           = "2006-01-02"
	SlotTokenTimeFormat  = "2006-01-02T15:04"
	NotesTimestampFormat = "02/01/2006 15:04"
)

// ActiveBookingStatuses статусы, в которых автомобиль считается находящимся в мастерской
// Не более одного такого ингресо на автомобиль
var ActiveBookingStatuses = []BookingStatus{
	BookingScheduled,
	BookingInProgress,
	BookingPaused,
	BookingFinished,
}

// OccupyingBookingStatuses статусы, в которых ингресо занимает подъёмник
var OccupyingBookingStatuses = []BookingStatus{
	BookingScheduled,
	BookingInProgress,
}

// ActiveRequestStatuses статусы заявки, блокирующие новую заявку на тот же автомобиль
var ActiveRequestStatuses = []RequestStatus{
	RequestPending,
	RequestApproved,
}

// FinishedTaskStatuses статусы задачи, не блокирующие завершение ингресо
var FinishedTaskStatuses = []TaskStatus{
	TaskCompleted,
	TaskCancelled,
}
