package domain

import "github.com/shopspring/decimal"

// DiscountType тип скидки
type DiscountType string

const (
	DiscountTypeCertificate     DiscountType = "CERTIFICATE"
	DiscountTypePromoCode       DiscountType = "PROMO_CODE"
	DiscountTypeGroup           DiscountType = "GROUP"
	DiscountTypeRepeatedBooking DiscountType = "REPEATED_BOOKING"
	DiscountTypeNone            DiscountType = "NONE"
)

// DiscountStatus результат попытки применить скидку
type DiscountStatus string

const (
	DiscountStatusActive         DiscountStatus = "ACTIVE"
	DiscountStatusExpired        DiscountStatus = "EXPIRED"
	DiscountStatusAlreadyApplied DiscountStatus = "ALREADY_APPLIED"
	DiscountStatusNotApplied     DiscountStatus = "NOT_APPLIED"
	DiscountStatusNone           DiscountStatus = "NONE"
)

// DiscountRequest параметры расчёта цены
type DiscountRequest struct {
	RouteID     int64
	PriceForOne decimal.Decimal
	Quantity    int

	// Code промокод или сертификат, пустая строка - код не передан
	Code string

	// Phone телефон клиента для скидки постоянного клиента
	Phone string
}

// DiscountResult рассчитанная цена, не сохраняется
type DiscountResult struct {
	Type             DiscountType
	Status           DiscountStatus
	PriceForOne      decimal.Decimal
	TotalCost        decimal.Decimal
	Quantity         int
	DiscountPercent  decimal.Decimal
	DiscountAbsolute decimal.Decimal

	// VoucherID заполнен, если результат получен по ваучеру
	VoucherID *int64
	Code      string
}

// IsActive возвращает true, если скидка действительно применена к цене
func (r *DiscountResult) IsActive() bool {
	return r.Status == DiscountStatusActive
}

// ConsumesVoucher возвращает true, если применение результата расходует ваучер
func (r *DiscountResult) ConsumesVoucher() bool {
	return r.IsActive() && r.VoucherID != nil &&
		(r.Type == DiscountTypeCertificate || r.Type == DiscountTypePromoCode)
}
