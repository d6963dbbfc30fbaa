package requests

import "errors"

var (
	// ErrAccessDenied заявку отменяет не тот водитель, что её подал
	ErrAccessDenied = errors.New("access denied")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("requests service: internal error")
)
