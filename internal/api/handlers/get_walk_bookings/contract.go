package get_walk_bookings

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetByWalkID(ctx context.Context, walkID int64) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
