package discount

import "github.com/shopspring/decimal"

// Settings параметры скидок, не привязанных к ваучерам
type Settings struct {
	GroupEnabled   bool
	GroupMinPlaces int
	GroupPercent   decimal.Decimal
	GroupAbsolute  decimal.Decimal

	RepeatedEnabled  bool
	RepeatedPercent  decimal.Decimal
	RepeatedAbsolute decimal.Decimal
}
