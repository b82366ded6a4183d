package voucher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/psqlbuilder"
)

// uniqueViolation код ошибки PostgreSQL при нарушении уникальности
const uniqueViolation = "23505"

var voucherColumns = []string{
	"id",
	"type",
	"status",
	"code",
	"route_id",
	"expires_at",
	"discount_percent",
	"discount_absolute",
	"count",
	"created_at",
	"updated_at",
}

// Filter фильтр списка ваучеров
type Filter struct {
	Type   *domain.VoucherType
	Status *domain.VoucherStatus
	Limit  uint64
	Offset uint64
}

// Repository репозиторий для работы с ваучерами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ваучеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает ваучер
func (r *Repository) Create(ctx context.Context, voucher *domain.Voucher) (*domain.Voucher, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("vouchers").
		Columns(
			"type",
			"status",
			"code",
			"route_id",
			"expires_at",
			"discount_percent",
			"discount_absolute",
			"count",
		).
		Values(
			voucher.Type,
			voucher.Status,
			voucher.Code,
			voucher.RouteID,
			voucher.ExpiresAt,
			voucher.DiscountPercent,
			voucher.DiscountAbsolute,
			voucher.Count,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&voucher.ID,
		&voucher.CreatedAt,
		&voucher.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: code=%s", ErrDuplicateCode, voucher.Code)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return voucher, nil
}

// GetByCode получает ваучер по коду
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	return r.getOne(ctx, "GetByCode", squirrel.Eq{"code": code})
}

// GetByID получает ваучер по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Voucher, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// List получает ваучеры по фильтру
func (r *Repository) List(ctx context.Context, filter Filter) ([]*domain.Voucher, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(voucherColumns...).
		From("vouchers").
		OrderBy("id DESC")
	if filter.Type != nil {
		builder = builder.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	vouchers := make([]*domain.Voucher, 0)
	for rows.Next() {
		voucher, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan voucher: %v", ErrScanRow, err)
		}
		vouchers = append(vouchers, voucher)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows iteration: %v", ErrScanRow, err)
	}

	return vouchers, nil
}

// MarkApplied расходует ваучер: ACTIVE -> APPLIED, count + 1
// Возвращает false, если ваучер уже не в статусе ACTIVE
func (r *Repository) MarkApplied(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, "MarkApplied", id, domain.VoucherStatusActive, domain.VoucherStatusApplied, squirrel.Expr("count + 1"))
}

// Restore возвращает израсходованный ваучер: APPLIED -> ACTIVE, count - 1
func (r *Repository) Restore(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, "Restore", id, domain.VoucherStatusApplied, domain.VoucherStatusActive, squirrel.Expr("GREATEST(count - 1, 0)"))
}

// UpdateStatus меняет статус ваучера, если текущий статус равен from
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.VoucherStatus) (bool, error) {
	return r.transition(ctx, "UpdateStatus", id, from, to, squirrel.Expr("count"))
}

func (r *Repository) transition(ctx context.Context, op string, id int64, from, to domain.VoucherStatus, count squirrel.Sqlizer) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("vouchers").
		Set("status", to).
		Set("count", count).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}

	return affected > 0, nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Voucher, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(voucherColumns...).
		From("vouchers").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	voucher, err := scanVoucher(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan voucher: %v", ErrScanRow, op, err)
	}

	return voucher, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVoucher(row scanner) (*domain.Voucher, error) {
	var (
		voucher   domain.Voucher
		routeID   sql.NullInt64
		expiresAt sql.NullTime
	)

	err := row.Scan(
		&voucher.ID,
		&voucher.Type,
		&voucher.Status,
		&voucher.Code,
		&routeID,
		&expiresAt,
		&voucher.DiscountPercent,
		&voucher.DiscountAbsolute,
		&voucher.Count,
		&voucher.CreatedAt,
		&voucher.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if routeID.Valid {
		voucher.RouteID = &routeID.Int64
	}
	if expiresAt.Valid {
		voucher.ExpiresAt = &expiresAt.Time
	}

	return &voucher, nil
}
