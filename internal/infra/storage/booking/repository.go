package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"b.id",
	"b.walk_id",
	"b.client_id",
	"b.payment_id",
	"b.status",
	"b.number_of_people",
	"b.end_time",
	"b.comment",
	"b.has_children",
	"b.agreement_accepted",
	"b.promo_code",
	"b.cancellation_reason",
	"b.created_at",
	"b.updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"walk_id",
			"client_id",
			"payment_id",
			"status",
			"number_of_people",
			"end_time",
			"comment",
			"has_children",
			"agreement_accepted",
			"promo_code",
		).
		Values(
			booking.WalkID,
			booking.ClientID,
			booking.PaymentID,
			booking.Status,
			booking.NumberOfPeople,
			booking.EndTime,
			booking.Comment,
			booking.HasChildren,
			booking.AgreementAccepted,
			booking.PromoCode,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetDueForExpiry получает бронирования в указанных статусах, чей дедлайн оплаты не задан или уже прошёл
func (r *Repository) GetDueForExpiry(ctx context.Context, statuses []domain.BookingStatus, now time.Time) ([]*domain.Booking, error) {
	return r.list(ctx, "GetDueForExpiry", psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.status": statuses}).
		Where(squirrel.Or{
			squirrel.Eq{"b.end_time": nil},
			squirrel.LtOrEq{"b.end_time": now},
		}).
		OrderBy("b.id ASC"))
}

// GetByStatus получает бронирования в указанном статусе
func (r *Repository) GetByStatus(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	return r.list(ctx, "GetByStatus", psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.status": status}).
		OrderBy("b.id ASC"))
}

// GetPaidWithFinishedWalk получает оплаченные бронирования, чья прогулка уже закончилась
func (r *Repository) GetPaidWithFinishedWalk(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	return r.list(ctx, "GetPaidWithFinishedWalk", psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Join("walks w ON w.id = b.walk_id").
		Where(squirrel.Eq{"b.status": domain.BookingStatusPaid}).
		Where(squirrel.LtOrEq{"w.end_time": now}).
		OrderBy("b.id ASC"))
}

// GetByWalkID получает бронирования прогулки
func (r *Repository) GetByWalkID(ctx context.Context, walkID int64) ([]*domain.Booking, error) {
	return r.list(ctx, "GetByWalkID", psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.walk_id": walkID}).
		OrderBy("b.id ASC"))
}

// TransitionStatus меняет статус, только если текущий статус входит в from
// Возвращает false без ошибки, если бронирование уже в другом статусе
func (r *Repository) TransitionStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus, reason *string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from})
	if reason != nil {
		builder = builder.Set("cancellation_reason", *reason)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: TransitionStatus - build update query: %v", ErrBuildQuery, err)
	}

	return execAffected(ctx, executor, "TransitionStatus", query, args)
}

// OpenPayment привязывает платёж к черновику и переводит его в WAITING_FOR_PAYMENT
func (r *Repository) OpenPayment(ctx context.Context, bookingID, paymentID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("payment_id", paymentID).
		Set("status", domain.BookingStatusWaitingForPayment).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": bookingID, "status": domain.BookingStatusDraft}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: OpenPayment - build update query: %v", ErrBuildQuery, err)
	}

	return execAffected(ctx, executor, "OpenPayment", query, args)
}

// CountByPhoneAndStatus считает бронирования клиента с указанным телефоном в статусе status
func (r *Repository) CountByPhoneAndStatus(ctx context.Context, phone string, status domain.BookingStatus) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings b").
		Join("clients c ON c.id = b.client_id").
		Where(squirrel.Eq{"c.phone": phone, "b.status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountByPhoneAndStatus - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByPhoneAndStatus - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute select: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

func execAffected(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) (bool, error) {
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		booking   domain.Booking
		paymentID sql.NullInt64
		endTime   sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.WalkID,
		&booking.ClientID,
		&paymentID,
		&booking.Status,
		&booking.NumberOfPeople,
		&endTime,
		&booking.Comment,
		&booking.HasChildren,
		&booking.AgreementAccepted,
		&booking.PromoCode,
		&booking.CancellationReason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentID.Valid {
		booking.PaymentID = &paymentID.Int64
	}
	if endTime.Valid {
		booking.EndTime = &endTime.Time
	}

	return &booking, nil
}
