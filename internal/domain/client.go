package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client клиент, оформивший бронирование
// Уникален по номеру телефона
type Client struct {
	ID        int64
	Name      string
	Phone     string
	Email     *string
	CreatedAt time.Time
}

// Route маршрут прогулки
type Route struct {
	ID          int64
	ServiceName string
	PriceForOne decimal.Decimal
}
