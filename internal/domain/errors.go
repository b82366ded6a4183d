package domain

import "errors"

var (
	// ErrCapacityExceeded возвращается, когда бронирование превысило бы свободные места прогулки
	ErrCapacityExceeded = errors.New("domain: capacity exceeded")

	// ErrInvalidCapacity возвращается при изменении вместимости ниже уже зарезервированных мест
	ErrInvalidCapacity = errors.New("domain: invalid capacity")

	// ErrInvalidPlaces возвращается при неположительном количестве мест
	ErrInvalidPlaces = errors.New("domain: number of places must be positive")

	// ErrInvariantViolation возвращается при нарушении инварианта reserved + available = max
	// Это логическая ошибка, её нельзя подавлять
	ErrInvariantViolation = errors.New("domain: capacity invariant violation")

	// ErrWalkNotOpen возвращается, когда прогулка не принимает бронирования
	ErrWalkNotOpen = errors.New("domain: walk is not open for booking")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("domain: invalid status transition")

	// ErrInvalidQuantity возвращается при неположительном количестве в расчёте цены
	ErrInvalidQuantity = errors.New("domain: quantity must be positive")

	// ErrInvalidPrice возвращается при отрицательной цене
	ErrInvalidPrice = errors.New("domain: price must not be negative")

	// ErrInvalidVoucher возвращается при некорректных параметрах ваучера
	ErrInvalidVoucher = errors.New("domain: invalid voucher")
)
