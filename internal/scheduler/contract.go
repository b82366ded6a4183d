package scheduler

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// BookingRepository выборки бронирований для фоновых задач
type BookingRepository interface {
	GetDueForExpiry(ctx context.Context, statuses []domain.BookingStatus, now time.Time) ([]*domain.Booking, error)
	GetByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error)
	GetPaidWithFinishedWalk(ctx context.Context, now time.Time) ([]*domain.Booking, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Payment, error)
}

// BookingService переходы жизненного цикла бронирования
// Все методы идемпотентны: false без ошибки означает, что переход уже не нужен
type BookingService interface {
	Expire(ctx context.Context, bookingID int64) (bool, error)
	ConfirmPayment(ctx context.Context, bookingID int64) (bool, error)
	FailPayment(ctx context.Context, bookingID int64) (bool, error)
	Complete(ctx context.Context, bookingID int64) (bool, error)
}

// PaymentGateway интерфейс проверки статуса счёта
type PaymentGateway interface {
	GetInvoiceStatus(ctx context.Context, invoiceID string) (domain.InvoiceStatus, error)
}

// MetricsCollector интерфейс для метрик фоновых задач
type MetricsCollector interface {
	IncSchedulerRun(job, result string)
	IncSchedulerItemFailure(job string)
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
