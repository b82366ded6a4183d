package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces количество знаков после запятой в денежных суммах
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// ValidatePricing проверяет параметры расчёта до входа в цепочку скидок
func ValidatePricing(price decimal.Decimal, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// CertificateCost считает стоимость с абсолютной скидкой на весь заказ:
// max(0, price*quantity - absolute)
func CertificateCost(price decimal.Decimal, quantity int, absolute decimal.Decimal) decimal.Decimal {
	cost := price.Mul(decimal.NewFromInt(int64(quantity))).Sub(absolute)
	return floorZero(cost)
}

// PercentCost считает стоимость со скидкой на место и процентом:
// max(0, (price - absolute) * quantity * (100 - percent) / 100)
func PercentCost(price decimal.Decimal, quantity int, percent, absolute decimal.Decimal) decimal.Decimal {
	cost := price.Sub(absolute).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(hundred.Sub(percent)).
		Div(hundred)
	return floorZero(cost)
}

// UnitPrice делит стоимость на количество с округлением вверх до копеек
// Гарантирует UnitPrice * quantity >= cost
func UnitPrice(cost decimal.Decimal, quantity int) decimal.Decimal {
	return cost.Div(decimal.NewFromInt(int64(quantity))).RoundCeil(MoneyPlaces)
}

// FullPrice возвращает стоимость без скидки
func FullPrice(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// NewPricedResult собирает результат расчёта по стоимости
func NewPricedResult(t DiscountType, s DiscountStatus, cost decimal.Decimal, quantity int, percent, absolute decimal.Decimal) *DiscountResult {
	return &DiscountResult{
		Type:             t,
		Status:           s,
		PriceForOne:      UnitPrice(cost, quantity),
		TotalCost:        cost.RoundCeil(MoneyPlaces),
		Quantity:         quantity,
		DiscountPercent:  percent,
		DiscountAbsolute: absolute,
	}
}

// NewFullPriceResult собирает результат без скидки с указанием причины
func NewFullPriceResult(t DiscountType, s DiscountStatus, price decimal.Decimal, quantity int) *DiscountResult {
	return NewPricedResult(t, s, FullPrice(price, quantity), quantity, decimal.Zero, decimal.Zero)
}

func floorZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
