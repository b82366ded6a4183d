package payment

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

var paymentColumns = []string{
	"id",
	"status",
	"amount",
	"price_for_one",
	"total_cost",
	"discount_type",
	"discount_status",
	"latest_payment_time",
	"invoice_id",
	"invoice_link",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с платежами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый платёж
func (r *Repository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"status",
			"amount",
			"price_for_one",
			"total_cost",
			"discount_type",
			"discount_status",
			"latest_payment_time",
			"invoice_id",
			"invoice_link",
		).
		Values(
			payment.Status,
			payment.Amount,
			payment.PriceForOne,
			payment.TotalCost,
			payment.DiscountType,
			payment.DiscountStatus,
			payment.LatestPaymentTime,
			payment.InvoiceID,
			payment.InvoiceLink,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&payment.ID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return payment, nil
}

// GetByID получает платёж по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// GetByIDs получает платежи пачкой, ключ результата - ID платежа
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Payment, error) {
	result := make(map[int64]*domain.Payment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByIDs - scan payment: %v", ErrScanRow, err)
		}
		result[payment.ID] = payment
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}

// TransitionStatus меняет статус платежа, только если текущий статус входит в from
func (r *Repository) TransitionStatus(ctx context.Context, id int64, from []domain.PaymentStatus, to domain.PaymentStatus) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: TransitionStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: TransitionStatus - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: TransitionStatus - rows affected: %v", ErrExecQuery, err)
	}

	return affected > 0, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row scanner) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.Status,
		&payment.Amount,
		&payment.PriceForOne,
		&payment.TotalCost,
		&payment.DiscountType,
		&payment.DiscountStatus,
		&payment.LatestPaymentTime,
		&payment.InvoiceID,
		&payment.InvoiceLink,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
