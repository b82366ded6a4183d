package calculate_price

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// WalkRepository интерфейс репозитория прогулок
type WalkRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Walk, error)
}

// DiscountManager интерфейс цепочки скидок, используется только расчёт без побочных эффектов
type DiscountManager interface {
	Quote(ctx context.Context, req domain.DiscountRequest) (*domain.DiscountResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
