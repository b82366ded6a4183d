package create_walk

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

// CreateWalkRequest HTTP request model
type CreateWalkRequest struct {
	RouteID         int64            `json:"routeId" validate:"required,gt=0"`
	MaxPlaces       int              `json:"maxPlaces" validate:"required,gt=0"`
	PriceForOne     *decimal.Decimal `json:"priceForOne,omitempty"`
	StartTime       time.Time        `json:"startTime" validate:"required"`
	DurationMinutes int              `json:"durationMinutes" validate:"required,gt=0"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateWalkRequest) ToServiceRequest() *models.CreateWalkRequest {
	return &models.CreateWalkRequest{
		RouteID:         r.RouteID,
		MaxPlaces:       r.MaxPlaces,
		PriceForOne:     r.PriceForOne,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
	}
}
