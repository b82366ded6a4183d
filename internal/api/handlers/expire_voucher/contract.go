package expire_voucher

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers/models"
)

type VoucherService interface {
	Expire(ctx context.Context, code string) (*models.VoucherResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
