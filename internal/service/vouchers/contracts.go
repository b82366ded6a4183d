package vouchers

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	voucherRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/voucher"
)

// VoucherRepository интерфейс репозитория ваучеров
type VoucherRepository interface {
	Create(ctx context.Context, voucher *domain.Voucher) (*domain.Voucher, error)
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)
	List(ctx context.Context, filter voucherRepo.Filter) ([]*domain.Voucher, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.VoucherStatus) (bool, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
