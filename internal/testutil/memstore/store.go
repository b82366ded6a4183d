// Package memstore хранилище в памяти с теми же контрактами, что и репозитории PostgreSQL.
// Используется в тестах сервисов, use case и планировщика.
package memstore

import (
	"context"
	"sync"
	"time"
)

// Store общее состояние всех репозиториев
type Store struct {
	mu sync.Mutex

	walks    map[int64]walkRow
	bookings map[int64]bookingRow
	payments map[int64]paymentRow
	vouchers map[int64]voucherRow
	clients  map[int64]clientRow
	routes   map[int64]routeRow

	nextID int64
	now    func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		walks:    make(map[int64]walkRow),
		bookings: make(map[int64]bookingRow),
		payments: make(map[int64]paymentRow),
		vouchers: make(map[int64]voucherRow),
		clients:  make(map[int64]clientRow),
		routes:   make(map[int64]routeRow),
		now:      time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// TxManager выполняет функцию без транзакции
type TxManager struct{}

// Do вызывает fn
func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DoSerializable вызывает fn
func (TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DoReadOnly вызывает fn
func (TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
