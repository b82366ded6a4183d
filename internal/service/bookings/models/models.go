package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на административную отмену бронирования
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason"`
	// Reject отклонение вместо отмены (итоговый статус REJECTED)
	Reject bool `json:"reject"`
}

// Response модели

// PaymentResponse данные счёта бронирования
type PaymentResponse struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	Amount            int             `json:"amount"`
	PriceForOne       decimal.Decimal `json:"priceForOne"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	DiscountType      string          `json:"discountType"`
	DiscountStatus    string          `json:"discountStatus"`
	LatestPaymentTime string          `json:"latestPaymentTime"` // ISO 8601 format
	InvoiceLink       string          `json:"invoiceLink"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                int64   `json:"id"`
	WalkID            int64   `json:"walkId"`
	ClientID          int64   `json:"clientId"`
	Status            string  `json:"status"`
	NumberOfPeople    int     `json:"numberOfPeople"`
	EndTime           *string `json:"endTime,omitempty"` // Дедлайн оплаты, ISO 8601
	Comment           *string `json:"comment,omitempty"`
	HasChildren       bool    `json:"hasChildren"`
	AgreementAccepted bool    `json:"agreementAccepted"`
	PromoCode         *string `json:"promoCode,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`

	Payment *PaymentResponse `json:"payment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
// payment может быть nil, если счёт ещё не открыт
func FromDomainBooking(b *domain.Booking, payment *domain.Payment) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		WalkID:             b.WalkID,
		ClientID:           b.ClientID,
		Status:             string(b.Status),
		NumberOfPeople:     b.NumberOfPeople,
		Comment:            b.Comment,
		HasChildren:        b.HasChildren,
		AgreementAccepted:  b.AgreementAccepted,
		PromoCode:          b.PromoCode,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.EndTime != nil {
		endStr := b.EndTime.Format(domain.DateTimeFormat)
		resp.EndTime = &endStr
	}

	if payment != nil {
		resp.Payment = FromDomainPayment(payment)
	}

	return resp
}

// FromDomainPayment конвертирует платёж в DTO
func FromDomainPayment(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:                p.ID,
		Status:            string(p.Status),
		Amount:            p.Amount,
		PriceForOne:       p.PriceForOne,
		TotalCost:         p.TotalCost,
		DiscountType:      string(p.DiscountType),
		DiscountStatus:    string(p.DiscountStatus),
		LatestPaymentTime: p.LatestPaymentTime.Format(domain.DateTimeFormat),
		InvoiceLink:       p.InvoiceLink,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, nil); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
