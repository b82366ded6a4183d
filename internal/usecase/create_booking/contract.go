package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
	"github.com/m04kA/SMC-WalkBookingService/internal/integrations/paymentgateway"
)

// WalkRepository интерфейс репозитория прогулок
type WalkRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Walk, error)
}

// RouteRepository интерфейс реестра маршрутов
type RouteRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Route, error)
}

// ClientRepository интерфейс реестра клиентов
type ClientRepository interface {
	Upsert(ctx context.Context, client *domain.Client) (*domain.Client, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	OpenPayment(ctx context.Context, bookingID, paymentID int64) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus, reason *string) (bool, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
}

// CapacityService интерфейс учёта мест
type CapacityService interface {
	Reserve(ctx context.Context, walkID int64, count int) (*domain.Walk, error)
	Release(ctx context.Context, walkID int64, count int) (*domain.Walk, error)
}

// DiscountManager интерфейс цепочки скидок
type DiscountManager interface {
	Apply(ctx context.Context, req domain.DiscountRequest) (*domain.DiscountResult, error)
	Restore(ctx context.Context, result *domain.DiscountResult) error
}

// PaymentGateway интерфейс платёжной системы
type PaymentGateway interface {
	OpenInvoice(ctx context.Context, in paymentgateway.InvoiceRequest) (*paymentgateway.Invoice, error)
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
