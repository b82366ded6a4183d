package discount

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// VoucherRepository интерфейс репозитория ваучеров
type VoucherRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)
	MarkApplied(ctx context.Context, id int64) (bool, error)
	Restore(ctx context.Context, id int64) (bool, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CountByPhoneAndStatus(ctx context.Context, phone string, status domain.BookingStatus) (int, error)
}

// Locker блокировка по ключу, сериализует расход одного ваучера
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// MetricsCollector интерфейс для бизнес-метрик
type MetricsCollector interface {
	IncDiscountResult(discountType, status, mode string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
