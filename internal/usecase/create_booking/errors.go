package create_booking

import "errors"

var (
	// ErrWalkNotFound возвращается, когда прогулка не найдена
	ErrWalkNotFound = errors.New("create_booking: walk not found")

	// ErrRouteNotFound возвращается, когда маршрут прогулки не найден
	ErrRouteNotFound = errors.New("create_booking: route not found")

	// ErrWalkNotOpen возвращается, когда запись на прогулку закрыта
	ErrWalkNotOpen = errors.New("create_booking: walk is not open for booking")

	// ErrCapacityExceeded возвращается, когда свободных мест меньше запрошенного
	ErrCapacityExceeded = errors.New("create_booking: not enough available places")

	// ErrWalkBusy возвращается, когда места прогулки не удалось изменить из-за параллельных запросов
	ErrWalkBusy = errors.New("create_booking: walk is busy, retry later")

	// ErrAgreementRequired возвращается, когда клиент не принял соглашение
	ErrAgreementRequired = errors.New("create_booking: agreement must be accepted")

	// ErrVoucherBusy возвращается, когда код применяется параллельным запросом
	ErrVoucherBusy = errors.New("create_booking: voucher is busy, retry later")

	// ErrPaymentUnavailable возвращается, когда не удалось выставить счёт
	ErrPaymentUnavailable = errors.New("create_booking: payment gateway unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
