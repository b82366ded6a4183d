package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByWalkID(ctx context.Context, walkID int64) ([]*domain.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus, reason *string) (bool, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	TransitionStatus(ctx context.Context, id int64, from []domain.PaymentStatus, to domain.PaymentStatus) (bool, error)
}

// CapacityService интерфейс учёта мест
type CapacityService interface {
	Release(ctx context.Context, walkID int64, count int) (*domain.Walk, error)
}

// EventPublisher интерфейс публикации событий бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}

// MetricsCollector интерфейс для бизнес-метрик
type MetricsCollector interface {
	IncBookingEvent(event string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
