package create_walk

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

type WalkService interface {
	Create(ctx context.Context, req *models.CreateWalkRequest) (*models.WalkResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
