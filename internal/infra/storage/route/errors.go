package route

import "errors"

var (
	// ErrRouteNotFound возвращается, когда маршрут не найден
	ErrRouteNotFound = errors.New("route.repository: route not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("route.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("route.repository: failed to scan row")
)
