package list_walks

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

type WalkService interface {
	ListOpen(ctx context.Context) (*models.WalkListResponse, error)
}

type Logger interface {
	Error(format string, v ...interface{})
}
