package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType тип ваучера
type VoucherType string

const (
	VoucherTypePromoCode   VoucherType = "PROMO_CODE"
	VoucherTypeCertificate VoucherType = "CERTIFICATE"
)

// VoucherStatus статус ваучера
type VoucherStatus string

const (
	VoucherStatusActive  VoucherStatus = "ACTIVE"
	VoucherStatusExpired VoucherStatus = "EXPIRED"
	VoucherStatusApplied VoucherStatus = "APPLIED"
)

// Voucher промокод или сертификат
// Оба типа одноразовые: после первого применения статус становится APPLIED
type Voucher struct {
	ID     int64
	Type   VoucherType
	Status VoucherStatus
	Code   string

	// RouteID ограничивает ваучер одним маршрутом, nil - любой маршрут
	RouteID *int64

	// ExpiresAt момент истечения, nil - бессрочный
	ExpiresAt *time.Time

	DiscountPercent  decimal.Decimal
	DiscountAbsolute decimal.Decimal

	// Count сколько раз ваучер был применён
	Count int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет параметры ваучера перед сохранением
func (v *Voucher) Validate() error {
	if v.Code == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidVoucher)
	}
	if v.Type != VoucherTypePromoCode && v.Type != VoucherTypeCertificate {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidVoucher, v.Type)
	}
	if v.DiscountPercent.IsNegative() || v.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: discountPercent must be within [0, 100]", ErrInvalidVoucher)
	}
	if v.DiscountAbsolute.IsNegative() {
		return fmt.Errorf("%w: discountAbsolute must not be negative", ErrInvalidVoucher)
	}
	return nil
}

// Usability возвращает статус, с которым ваучер может участвовать в расчёте цены
// ACTIVE - применим, EXPIRED/ALREADY_APPLIED - найден, но неприменим,
// NOT_APPLIED - ваучер привязан к другому маршруту
func (v *Voucher) Usability(routeID int64, now time.Time) DiscountStatus {
	switch {
	case v.Status == VoucherStatusApplied:
		return DiscountStatusAlreadyApplied
	case v.Status == VoucherStatusExpired:
		return DiscountStatusExpired
	case v.ExpiresAt != nil && !v.ExpiresAt.After(now):
		return DiscountStatusExpired
	case v.RouteID != nil && *v.RouteID != routeID:
		return DiscountStatusNotApplied
	}
	return DiscountStatusActive
}
