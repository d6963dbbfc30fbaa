package pause

import "errors"

var (
	// ErrPauseNotFound открытая пауза не найдена
	ErrPauseNotFound = errors.New("pause.repository: pause not found")

	// ErrPauseAlreadyOpen у ингресо уже есть открытая пауза
	ErrPauseAlreadyOpen = errors.New("pause.repository: booking already has an open pause")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("pause.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("pause.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("pause.repository: failed to scan row")
)
