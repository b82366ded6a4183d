package walk

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/psqlbuilder"
)

var walkColumns = []string{
	"id",
	"route_id",
	"status",
	"max_places",
	"reserved_places",
	"available_places",
	"price_for_one",
	"start_time",
	"end_time",
	"duration_minutes",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с прогулками
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория прогулок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую прогулку
func (r *Repository) Create(ctx context.Context, walk *domain.Walk) (*domain.Walk, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("walks").
		Columns(
			"route_id",
			"status",
			"max_places",
			"reserved_places",
			"available_places",
			"price_for_one",
			"start_time",
			"end_time",
			"duration_minutes",
		).
		Values(
			walk.RouteID,
			walk.Status,
			walk.MaxPlaces,
			walk.ReservedPlaces,
			walk.AvailablePlaces,
			walk.PriceForOne,
			walk.StartTime,
			walk.EndTime,
			walk.DurationMinutes,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&walk.ID,
		&walk.Version,
		&walk.CreatedAt,
		&walk.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return walk, nil
}

// GetByID получает прогулку по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Walk, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(walkColumns...).
		From("walks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	walk, err := scanWalk(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan walk: %v", ErrScanRow, err)
	}

	return walk, nil
}

// ListByStatus получает прогулки в указанных статусах, отсортированные по времени начала
func (r *Repository) ListByStatus(ctx context.Context, statuses []domain.WalkStatus) ([]*domain.Walk, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(walkColumns...).
		From("walks").
		Where(squirrel.Eq{"status": statuses}).
		OrderBy("start_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	walks := make([]*domain.Walk, 0)
	for rows.Next() {
		walk, err := scanWalk(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByStatus - scan walk: %v", ErrScanRow, err)
		}
		walks = append(walks, walk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - rows iteration: %v", ErrScanRow, err)
	}

	return walks, nil
}

// UpdateCapacity сохраняет счётчики мест, если версия строки не изменилась
// При успехе увеличивает walk.Version, при конфликте возвращает ErrVersionConflict
func (r *Repository) UpdateCapacity(ctx context.Context, walk *domain.Walk) error {
	return r.compareAndSwap(ctx, "UpdateCapacity", walk, map[string]interface{}{
		"max_places":       walk.MaxPlaces,
		"reserved_places":  walk.ReservedPlaces,
		"available_places": walk.AvailablePlaces,
	})
}

// ReservePlaces атомарно резервирует count мест одним условным UPDATE
// Возвращает прогулку после изменения или ErrConditionNotMet, если прогулка не открыта либо мест не хватает
func (r *Repository) ReservePlaces(ctx context.Context, id int64, count int) (*domain.Walk, error) {
	return r.shiftPlaces(ctx, "ReservePlaces", id, count, squirrel.And{
		squirrel.Eq{"id": id, "status": domain.WalkStatusBookingInProgress},
		squirrel.GtOrEq{"available_places": count},
	})
}

// ReleasePlaces атомарно возвращает count мест
// Возвращает ErrConditionNotMet, если зарезервировано меньше count
func (r *Repository) ReleasePlaces(ctx context.Context, id int64, count int) (*domain.Walk, error) {
	return r.shiftPlaces(ctx, "ReleasePlaces", id, -count, squirrel.And{
		squirrel.Eq{"id": id},
		squirrel.GtOrEq{"reserved_places": count},
	})
}

// shiftPlaces переносит delta мест из свободных в зарезервированные (отрицательная delta - обратно)
func (r *Repository) shiftPlaces(ctx context.Context, op string, id int64, delta int, where squirrel.Sqlizer) (*domain.Walk, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("walks").
		Set("available_places", squirrel.Expr("available_places - ?", delta)).
		Set("reserved_places", squirrel.Expr("reserved_places + ?", delta)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(where).
		Suffix("RETURNING " + strings.Join(walkColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	walk, err := scanWalk(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s walk id=%d", ErrConditionNotMet, op, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	return walk, nil
}

// UpdateStatus сохраняет статус прогулки, если версия строки не изменилась
func (r *Repository) UpdateStatus(ctx context.Context, walk *domain.Walk) error {
	return r.compareAndSwap(ctx, "UpdateStatus", walk, map[string]interface{}{"status": walk.Status})
}

func (r *Repository) compareAndSwap(ctx context.Context, op string, walk *domain.Walk, fields map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("walks").
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		SetMap(fields).
		Where(squirrel.Eq{"id": walk.ID, "version": walk.Version})

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: walk id=%d version=%d", ErrVersionConflict, walk.ID, walk.Version)
	}

	walk.Version++
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanWalk(row scanner) (*domain.Walk, error) {
	var walk domain.Walk
	err := row.Scan(
		&walk.ID,
		&walk.RouteID,
		&walk.Status,
		&walk.MaxPlaces,
		&walk.ReservedPlaces,
		&walk.AvailablePlaces,
		&walk.PriceForOne,
		&walk.StartTime,
		&walk.EndTime,
		&walk.DurationMinutes,
		&walk.Version,
		&walk.CreatedAt,
		&walk.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &walk, nil
}
