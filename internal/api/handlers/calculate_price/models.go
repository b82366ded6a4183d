package calculate_price

import (
	"github.com/shopspring/decimal"

	calculatePrice "github.com/m04kA/SMC-WalkBookingService/internal/usecase/calculate_price"
)

// CalculatePriceRequest HTTP request model
type CalculatePriceRequest struct {
	WalkID         int64   `json:"walkId" validate:"required,gt=0"`
	NumberOfPeople int     `json:"numberOfPeople" validate:"required,gt=0"`
	PromoCode      *string `json:"promoCode,omitempty" validate:"omitempty,max=64"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// CalculatePriceResponse HTTP response model
type CalculatePriceResponse struct {
	WalkID           int64           `json:"walkId"`
	NumberOfPeople   int             `json:"numberOfPeople"`
	BasePriceForOne  decimal.Decimal `json:"basePriceForOne"`
	PriceForOne      decimal.Decimal `json:"priceForOne"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	DiscountType     string          `json:"discountType"`
	DiscountStatus   string          `json:"discountStatus"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	DiscountAbsolute decimal.Decimal `json:"discountAbsolute"`
	AvailablePlaces  int             `json:"availablePlaces"`
	EnoughPlaces     bool            `json:"enoughPlaces"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель usecase
func (r *CalculatePriceRequest) ToUseCaseRequest() *calculatePrice.Request {
	req := &calculatePrice.Request{
		WalkID:         r.WalkID,
		NumberOfPeople: r.NumberOfPeople,
	}
	if r.PromoCode != nil {
		req.PromoCode = *r.PromoCode
	}
	if r.Phone != nil {
		req.Phone = *r.Phone
	}
	return req
}

// FromUseCaseResponse конвертирует ответ usecase в HTTP ответ
func FromUseCaseResponse(resp *calculatePrice.Response) *CalculatePriceResponse {
	return &CalculatePriceResponse{
		WalkID:           resp.WalkID,
		NumberOfPeople:   resp.NumberOfPeople,
		BasePriceForOne:  resp.BasePriceForOne,
		PriceForOne:      resp.PriceForOne,
		TotalCost:        resp.TotalCost,
		DiscountType:     resp.DiscountType,
		DiscountStatus:   resp.DiscountStatus,
		DiscountPercent:  resp.DiscountPercent,
		DiscountAbsolute: resp.DiscountAbsolute,
		AvailablePlaces:  resp.AvailablePlaces,
		EnoughPlaces:     resp.EnoughPlaces,
	}
}
