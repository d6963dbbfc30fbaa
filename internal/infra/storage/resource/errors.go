package resource

import "errors"

var (
	// ErrResourceNotFound возвращается, когда подъёмник не найден
	ErrResourceNotFound = errors.New("resource.repository: resource not found")

	// ErrResourceExists подъёмник с таким номером в категории уже есть
	ErrResourceExists = errors.New("resource.repository: resource already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("resource.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("resource.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("resource.repository: failed to scan row")
)
