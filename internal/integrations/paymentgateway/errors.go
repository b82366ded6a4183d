package paymentgateway

import "errors"

var (
	// ErrInvoiceNotFound возвращается, когда счёт не найден в платёжной системе
	ErrInvoiceNotFound = errors.New("paymentgateway client: invoice not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentgateway client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от платёжной системы
	ErrInvalidResponse = errors.New("paymentgateway client: invalid response")

	// ErrUnavailable возвращается, когда платёжная система недоступна (5xx, таймаут)
	// Вызывающий код должен повторить запрос позже
	ErrUnavailable = errors.New("paymentgateway client: service unavailable")
)
