package list_vouchers

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers/models"
)

type VoucherService interface {
	List(ctx context.Context, req *models.ListRequest) (*models.VoucherListResponse, error)
}

type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
