package update_walk_status

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

type WalkService interface {
	UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.WalkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
