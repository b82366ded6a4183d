package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// Request модели

// CreateWalkRequest запрос на создание прогулки
type CreateWalkRequest struct {
	RouteID         int64            `json:"routeId"`
	MaxPlaces       int              `json:"maxPlaces"`
	PriceForOne     *decimal.Decimal `json:"priceForOne,omitempty"` // По умолчанию цена маршрута
	StartTime       time.Time        `json:"startTime"`
	DurationMinutes int              `json:"durationMinutes"`
}

// UpdateStatusRequest запрос на смену статуса прогулки
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ResizeRequest запрос на изменение вместимости
type ResizeRequest struct {
	MaxPlaces int `json:"maxPlaces"`
}

// Response модели

// WalkResponse ответ с данными прогулки
type WalkResponse struct {
	ID              int64           `json:"id"`
	RouteID         int64           `json:"routeId"`
	Status          string          `json:"status"`
	MaxPlaces       int             `json:"maxPlaces"`
	ReservedPlaces  int             `json:"reservedPlaces"`
	AvailablePlaces int             `json:"availablePlaces"`
	PriceForOne     decimal.Decimal `json:"priceForOne"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	DurationMinutes int             `json:"durationMinutes"`
}

// WalkListResponse список прогулок
type WalkListResponse struct {
	Walks []WalkResponse `json:"walks"`
	Total int            `json:"total"`
}

// FromDomainWalk конвертирует domain.Walk в WalkResponse
func FromDomainWalk(w *domain.Walk) *WalkResponse {
	return &WalkResponse{
		ID:              w.ID,
		RouteID:         w.RouteID,
		Status:          string(w.Status),
		MaxPlaces:       w.MaxPlaces,
		ReservedPlaces:  w.ReservedPlaces,
		AvailablePlaces: w.AvailablePlaces,
		PriceForOne:     w.PriceForOne,
		StartTime:       w.StartTime.Format(domain.DateTimeFormat),
		EndTime:         w.EndTime.Format(domain.DateTimeFormat),
		DurationMinutes: w.DurationMinutes,
	}
}

// FromDomainWalkList конвертирует список прогулок
func FromDomainWalkList(walks []*domain.Walk) *WalkListResponse {
	resp := &WalkListResponse{
		Walks: make([]WalkResponse, 0, len(walks)),
		Total: len(walks),
	}
	for _, w := range walks {
		resp.Walks = append(resp.Walks, *FromDomainWalk(w))
	}
	return resp
}
