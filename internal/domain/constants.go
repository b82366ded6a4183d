package domain

import "time"

const (
	// DefaultBookingLifetime время на оплату бронирования по умолчанию
	DefaultBookingLifetime = 15 * time.Minute

	// DateTimeFormat формат даты и времени в ответах API
	DateTimeFormat = time.RFC3339
)
