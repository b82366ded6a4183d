package queue

import "time"

// EventType тип события жизненного цикла бронирования
type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingPaid      EventType = "booking.paid"
	EventBookingExpired   EventType = "booking.expired"
	EventBookingCanceled  EventType = "booking.canceled"
	EventBookingRejected  EventType = "booking.rejected"
	EventBookingCompleted EventType = "booking.completed"
)

// Event событие, публикуемое в очередь после смены статуса бронирования
type Event struct {
	Type           EventType `json:"type"`
	BookingID      int64     `json:"bookingId"`
	WalkID         int64     `json:"walkId"`
	NumberOfPeople int       `json:"numberOfPeople"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurredAt"`
}
