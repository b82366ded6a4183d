package client

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/psqlbuilder"
)

// Repository реестр клиентов, уникальных по телефону
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает клиента или обновляет имя и почту существующего с тем же телефоном
func (r *Repository) Upsert(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("clients").
		Columns("name", "phone", "email").
		Values(client.Name, client.Phone, client.Email).
		Suffix("ON CONFLICT (phone) DO UPDATE SET name = EXCLUDED.name, email = COALESCE(EXCLUDED.email, clients.email) RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&client.ID, &client.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return client, nil
}
