package route

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/psqlbuilder"
)

// Repository реестр маршрутов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория маршрутов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает маршрут по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "service_name", "price_for_one").
		From("routes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var route domain.Route
	err = executor.QueryRowContext(ctx, query, args...).Scan(&route.ID, &route.ServiceName, &route.PriceForOne)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan route: %v", ErrScanRow, err)
	}

	return &route, nil
}
