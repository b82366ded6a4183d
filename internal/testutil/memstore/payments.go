package memstore

import (
	"context"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	paymentRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/payment"
)

type paymentRow = domain.Payment

// Payments репозиторий платежей в памяти
type Payments struct{ s *Store }

// Payments возвращает репозиторий платежей
func (s *Store) Payments() *Payments { return &Payments{s: s} }

// Create сохраняет платёж
func (r *Payments) Create(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	payment.ID = r.s.id()
	payment.CreatedAt = r.s.now()
	payment.UpdatedAt = payment.CreatedAt
	r.s.payments[payment.ID] = *payment
	return payment, nil
}

// GetByID возвращает копию платежа
func (r *Payments) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.payments[id]
	if !ok {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	return &row, nil
}

// GetByIDs возвращает платежи пачкой
func (r *Payments) GetByIDs(_ context.Context, ids []int64) (map[int64]*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make(map[int64]*domain.Payment, len(ids))
	for _, id := range ids {
		if row, ok := r.s.payments[id]; ok {
			p := row
			result[id] = &p
		}
	}
	return result, nil
}

// TransitionStatus меняет статус, если текущий входит в from
func (r *Payments) TransitionStatus(_ context.Context, id int64, from []domain.PaymentStatus, to domain.PaymentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.payments[id]
	if !ok {
		return false, nil
	}
	for _, st := range from {
		if row.Status == st {
			row.Status = to
			r.s.payments[id] = row
			return true, nil
		}
	}
	return false, nil
}

// Payment возвращает текущее состояние платежа
func (s *Store) Payment(id int64) domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[id]
}

// PaymentCount возвращает количество платежей
func (s *Store) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}
