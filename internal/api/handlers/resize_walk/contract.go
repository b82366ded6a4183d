package resize_walk

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

type WalkService interface {
	Resize(ctx context.Context, id int64, req *models.ResizeRequest) (*models.WalkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
