package vouchers

import "errors"

var (
	// ErrVoucherNotFound возвращается, когда ваучер не найден
	ErrVoucherNotFound = errors.New("vouchers: voucher not found")

	// ErrDuplicateCode возвращается при создании ваучера с существующим кодом
	ErrDuplicateCode = errors.New("vouchers: voucher code already exists")

	// ErrCannotExpire возвращается, когда ваучер уже не активен
	ErrCannotExpire = errors.New("vouchers: voucher is not active")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("vouchers: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("vouchers: internal error")
)
