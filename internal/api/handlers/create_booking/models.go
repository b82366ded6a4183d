package create_booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-WalkBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	WalkID            int64   `json:"walkId" validate:"required,gt=0"`
	NumberOfPeople    int     `json:"numberOfPeople" validate:"required,gt=0"`
	Name              string  `json:"name" validate:"required,max=255"`
	Phone             string  `json:"phone" validate:"required,e164"`
	Email             *string `json:"email,omitempty" validate:"omitempty,email"`
	Comment           *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
	HasChildren       bool    `json:"hasChildren"`
	AgreementAccepted bool    `json:"agreementAccepted"`
	PromoCode         *string `json:"promoCode,omitempty" validate:"omitempty,max=64"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64           `json:"id"`
	WalkID         int64           `json:"walkId"`
	ClientID       int64           `json:"clientId"`
	Status         string          `json:"status"`
	NumberOfPeople int             `json:"numberOfPeople"`
	EndTime        string          `json:"endTime"`
	PaymentID      int64           `json:"paymentId"`
	PriceForOne    decimal.Decimal `json:"priceForOne"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	DiscountType   string          `json:"discountType"`
	DiscountStatus string          `json:"discountStatus"`
	InvoiceLink    string          `json:"invoiceLink"`
	CreatedAt      string          `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() *createBooking.Request {
	return &createBooking.Request{
		WalkID:            r.WalkID,
		NumberOfPeople:    r.NumberOfPeople,
		Name:              r.Name,
		Phone:             r.Phone,
		Email:             r.Email,
		Comment:           r.Comment,
		HasChildren:       r.HasChildren,
		AgreementAccepted: r.AgreementAccepted,
		PromoCode:         r.PromoCode,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:             resp.ID,
		WalkID:         resp.WalkID,
		ClientID:       resp.ClientID,
		Status:         resp.Status,
		NumberOfPeople: resp.NumberOfPeople,
		EndTime:        resp.EndTime.Format(domain.DateTimeFormat),
		PaymentID:      resp.PaymentID,
		PriceForOne:    resp.PriceForOne,
		TotalCost:      resp.TotalCost,
		DiscountType:   resp.DiscountType,
		DiscountStatus: resp.DiscountStatus,
		InvoiceLink:    resp.InvoiceLink,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
	}
}
