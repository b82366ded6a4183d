package capacity

import "errors"

var (
	// ErrWalkNotFound возвращается, когда прогулка не найдена
	ErrWalkNotFound = errors.New("capacity: walk not found")

	// ErrCapacityExceeded возвращается, когда свободных мест меньше запрошенного
	ErrCapacityExceeded = errors.New("capacity: capacity exceeded")

	// ErrWalkNotOpen возвращается, когда прогулка не принимает бронирования
	ErrWalkNotOpen = errors.New("capacity: walk is not open for booking")

	// ErrInvalidCapacity возвращается при недопустимом изменении вместимости
	ErrInvalidCapacity = errors.New("capacity: invalid capacity")

	// ErrInvalidPlaces возвращается при неположительном количестве мест
	ErrInvalidPlaces = errors.New("capacity: number of places must be positive")

	// ErrInvariantViolation возвращается при рассогласовании счётчиков мест
	ErrInvariantViolation = errors.New("capacity: ledger invariant violation")

	// ErrConcurrentUpdate возвращается, когда не удалось сохранить изменение за отведённое число попыток
	ErrConcurrentUpdate = errors.New("capacity: too many concurrent updates")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("capacity: internal error")
)
