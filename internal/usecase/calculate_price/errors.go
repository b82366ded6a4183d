package calculate_price

import "errors"

var (
	// ErrWalkNotFound возвращается, когда прогулка не найдена
	ErrWalkNotFound = errors.New("calculate_price: walk not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("calculate_price: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("calculate_price: internal error")
)
