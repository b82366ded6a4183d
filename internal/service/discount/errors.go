package discount

import "errors"

var (
	// ErrInvalidQuantity возвращается при неположительном количестве мест
	ErrInvalidQuantity = errors.New("discount: quantity must be positive")

	// ErrInvalidPrice возвращается при отрицательной цене
	ErrInvalidPrice = errors.New("discount: price must not be negative")

	// ErrVoucherBusy возвращается, когда ваучер занят параллельным применением дольше допустимого
	ErrVoucherBusy = errors.New("discount: voucher is being applied concurrently")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("discount: internal error")
)
