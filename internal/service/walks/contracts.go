package walks

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// WalkRepository интерфейс репозитория прогулок
type WalkRepository interface {
	Create(ctx context.Context, walk *domain.Walk) (*domain.Walk, error)
	GetByID(ctx context.Context, id int64) (*domain.Walk, error)
	ListByStatus(ctx context.Context, statuses []domain.WalkStatus) ([]*domain.Walk, error)
	UpdateStatus(ctx context.Context, walk *domain.Walk) error
}

// RouteRepository интерфейс реестра маршрутов
type RouteRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Route, error)
}

// CapacityService интерфейс учёта мест
type CapacityService interface {
	Resize(ctx context.Context, walkID int64, newMax int) (*domain.Walk, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
