package walk

import "errors"

var (
	// ErrWalkNotFound возвращается, когда прогулка не найдена
	ErrWalkNotFound = errors.New("walk.repository: walk not found")

	// ErrVersionConflict возвращается, когда строку изменили параллельно (версия не совпала)
	ErrVersionConflict = errors.New("walk.repository: version conflict")

	// ErrConditionNotMet возвращается, когда условный UPDATE не затронул ни одной строки
	ErrConditionNotMet = errors.New("walk.repository: update condition not met")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("walk.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("walk.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("walk.repository: failed to scan row")
)
