package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда ингресо не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken подъёмник уже занят в пересекающееся окно (exclusion constraint)
	ErrSlotTaken = errors.New("booking.repository: resource slot already taken")

	// ErrVehicleBusy у автомобиля уже есть активное ингресо (частичный уникальный индекс)
	ErrVehicleBusy = errors.New("booking.repository: vehicle already has an active booking")

	// ErrResourceNotFound ссылка на несуществующий подъёмник или запись КПП
	ErrResourceNotFound = errors.New("booking.repository: referenced row not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
