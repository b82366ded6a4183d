package walks

import "errors"

var (
	// ErrWalkNotFound возвращается, когда прогулка не найдена
	ErrWalkNotFound = errors.New("walks: walk not found")

	// ErrRouteNotFound возвращается, когда маршрут не найден
	ErrRouteNotFound = errors.New("walks: route not found")

	// ErrInvalidTransition возвращается при недопустимой смене статуса прогулки
	ErrInvalidTransition = errors.New("walks: invalid walk status transition")

	// ErrInvalidCapacity возвращается при недопустимом изменении вместимости
	ErrInvalidCapacity = errors.New("walks: invalid walk capacity")

	// ErrConcurrentUpdate возвращается, когда прогулку параллельно меняют слишком часто
	ErrConcurrentUpdate = errors.New("walks: walk is being updated concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("walks: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("walks: internal error")
)
