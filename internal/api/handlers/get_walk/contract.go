package get_walk

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

type WalkService interface {
	GetByID(ctx context.Context, id int64) (*models.WalkResponse, error)
}

type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
