package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus статус платежа
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusExpired  PaymentStatus = "EXPIRED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

// IsTerminal возвращает true для финальных статусов платежа
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending && s != PaymentStatusPaid
}

// InvoiceStatus статус счёта во внешней платёжной системе
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusFailed  InvoiceStatus = "failed"
)

// Payment счёт на оплату бронирования
// Принадлежит ровно одному бронированию
type Payment struct {
	ID     int64
	Status PaymentStatus

	// Amount количество оплачиваемых мест
	Amount int

	// PriceForOne цена за одно место после скидки
	PriceForOne decimal.Decimal
	TotalCost   decimal.Decimal

	DiscountType   DiscountType
	DiscountStatus DiscountStatus

	LatestPaymentTime time.Time

	InvoiceID   string
	InvoiceLink string

	CreatedAt time.Time
	UpdatedAt time.Time
}
