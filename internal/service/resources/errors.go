package resources

import "errors"

var (
	// ErrResourceExists подъёмник с таким номером в категории уже есть
	ErrResourceExists = errors.New("resource already exists")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("resources service: internal error")
)
