package calculate_price

import "github.com/shopspring/decimal"

// Request модель запроса на предварительный расчёт цены
type Request struct {
	WalkID         int64  // ID прогулки
	NumberOfPeople int    // Количество мест
	PromoCode      string // Промокод или сертификат (опционально)
	Phone          string // Телефон для скидки постоянного клиента (опционально)
}

// Response модель ответа с рассчитанной ценой
type Response struct {
	WalkID           int64
	NumberOfPeople   int
	BasePriceForOne  decimal.Decimal // Цена за место без скидки
	PriceForOne      decimal.Decimal // Цена за место после скидки
	TotalCost        decimal.Decimal
	DiscountType     string
	DiscountStatus   string
	DiscountPercent  decimal.Decimal
	DiscountAbsolute decimal.Decimal

	AvailablePlaces int  // Свободно мест на момент расчёта
	EnoughPlaces    bool // Хватает ли мест на запрошенное количество
}
