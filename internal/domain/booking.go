package domain

import (
	"fmt"
	"time"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	BookingStatusDraft             BookingStatus = "DRAFT"
	BookingStatusWaitingForPayment BookingStatus = "WAITING_FOR_PAYMENT"
	BookingStatusPaid              BookingStatus = "PAID"
	BookingStatusExpired           BookingStatus = "EXPIRED"
	BookingStatusCompleted         BookingStatus = "COMPLETED"
	BookingStatusCanceled          BookingStatus = "CANCELED"
	BookingStatusRejected          BookingStatus = "REJECTED"
)

// PendingPaymentStatuses статусы, в которых бронирование ждёт оплаты и подлежит истечению
var PendingPaymentStatuses = []BookingStatus{
	BookingStatusDraft,
	BookingStatusWaitingForPayment,
}

// IsTerminal возвращает true для финальных статусов
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusExpired, BookingStatusCompleted, BookingStatusCanceled, BookingStatusRejected:
		return true
	}
	return false
}

// In проверяет вхождение статуса в набор
func (s BookingStatus) In(set []BookingStatus) bool {
	for _, st := range set {
		if st == s {
			return true
		}
	}
	return false
}

// HoldsCapacity возвращает true, если бронирование удерживает места прогулки
// Места удерживаются с момента создания и до перехода в EXPIRED/CANCELED/REJECTED
func (s BookingStatus) HoldsCapacity() bool {
	switch s {
	case BookingStatusDraft, BookingStatusWaitingForPayment, BookingStatusPaid, BookingStatusCompleted:
		return true
	}
	return false
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusDraft: {
		BookingStatusWaitingForPayment, BookingStatusExpired, BookingStatusCanceled, BookingStatusRejected,
	},
	BookingStatusWaitingForPayment: {
		BookingStatusPaid, BookingStatusExpired, BookingStatusCanceled, BookingStatusRejected,
	},
	BookingStatusPaid: {
		BookingStatusCompleted, BookingStatusCanceled, BookingStatusRejected,
	},
}

// CanTransition проверяет допустимость перехода from -> to
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SourcesFor возвращает статусы, из которых допустим переход в to
// Используется для условных обновлений в хранилище
func SourcesFor(to BookingStatus) []BookingStatus {
	var sources []BookingStatus
	for _, from := range []BookingStatus{BookingStatusDraft, BookingStatusWaitingForPayment, BookingStatusPaid} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

// Booking бронирование мест на прогулку
type Booking struct {
	ID             int64
	WalkID         int64
	ClientID       int64
	PaymentID      *int64 // nil до открытия счёта
	Status         BookingStatus
	NumberOfPeople int

	// EndTime дедлайн оплаты, nil считается уже истёкшим
	EndTime *time.Time

	Comment           *string
	HasChildren       bool
	AgreementAccepted bool
	PromoCode         *string

	CancellationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransitionTo переводит бронирование в новый статус
func (b *Booking) TransitionTo(next BookingStatus) error {
	if !CanTransition(b.Status, next) {
		return fmt.Errorf("%w: booking %s -> %s", ErrInvalidTransition, b.Status, next)
	}
	b.Status = next
	return nil
}

// IsPaymentOverdue возвращает true, если дедлайн оплаты прошёл или не задан
func (b *Booking) IsPaymentOverdue(now time.Time) bool {
	return b.EndTime == nil || !b.EndTime.After(now)
}
