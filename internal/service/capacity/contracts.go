package capacity

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// WalkRepository интерфейс репозитория прогулок
type WalkRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Walk, error)
	ReservePlaces(ctx context.Context, id int64, count int) (*domain.Walk, error)
	ReleasePlaces(ctx context.Context, id int64, count int) (*domain.Walk, error)
	UpdateCapacity(ctx context.Context, walk *domain.Walk) error
}

// MetricsCollector интерфейс для бизнес-метрик
type MetricsCollector interface {
	IncCapacityConflict()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
