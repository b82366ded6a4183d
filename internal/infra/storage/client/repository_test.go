package client

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

func TestRepository_UpsertDedupByPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO clients (name,phone,email) VALUES ($1,$2,$3) ON CONFLICT (phone)")).
			WithArgs("Anna", "+79990000000", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(17), now))
	}

	first, err := repo.Upsert(context.Background(), &domain.Client{Name: "Anna", Phone: "+79990000000"})
	require.NoError(t, err)
	second, err := repo.Upsert(context.Background(), &domain.Client{Name: "Anna", Phone: "+79990000000"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
