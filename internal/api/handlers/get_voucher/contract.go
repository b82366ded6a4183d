package get_voucher

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers/models"
)

type VoucherService interface {
	GetByCode(ctx context.Context, code string) (*models.VoucherResponse, error)
}

type Logger interface {
	Error(format string, v ...interface{})
}
