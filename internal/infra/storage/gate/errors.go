package gate

import "errors"

var (
	// ErrEntryNotFound запись КПП не найдена
	ErrEntryNotFound = errors.New("gate.repository: gate entry not found")

	// ErrAlreadyExited выезд по записи уже отмечен
	ErrAlreadyExited = errors.New("gate.repository: exit already recorded")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("gate.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("gate.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("gate.repository: failed to scan row")
)
