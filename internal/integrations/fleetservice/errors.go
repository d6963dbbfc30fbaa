package fleetservice

import "errors"

var (
	// ErrVehicleNotFound автомобиль с таким номером не зарегистрирован или выведен из эксплуатации
	ErrVehicleNotFound = errors.New("fleetservice client: vehicle not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("fleetservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("fleetservice client: invalid response")
)
