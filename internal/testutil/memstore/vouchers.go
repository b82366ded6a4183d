package memstore

import (
	"context"
	"sort"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	voucherRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/voucher"
)

type voucherRow = domain.Voucher

// Vouchers репозиторий ваучеров в памяти
type Vouchers struct{ s *Store }

// Vouchers возвращает репозиторий ваучеров
func (s *Store) Vouchers() *Vouchers { return &Vouchers{s: s} }

// Create сохраняет ваучер, код должен быть уникален
func (r *Vouchers) Create(_ context.Context, voucher *domain.Voucher) (*domain.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, v := range r.s.vouchers {
		if v.Code == voucher.Code {
			return nil, voucherRepo.ErrDuplicateCode
		}
	}
	voucher.ID = r.s.id()
	voucher.CreatedAt = r.s.now()
	voucher.UpdatedAt = voucher.CreatedAt
	r.s.vouchers[voucher.ID] = *voucher
	return voucher, nil
}

// GetByCode возвращает ваучер по коду
func (r *Vouchers) GetByCode(_ context.Context, code string) (*domain.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, v := range r.s.vouchers {
		if v.Code == code {
			found := v
			return &found, nil
		}
	}
	return nil, voucherRepo.ErrVoucherNotFound
}

// GetByID возвращает ваучер по ID
func (r *Vouchers) GetByID(_ context.Context, id int64) (*domain.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vouchers[id]
	if !ok {
		return nil, voucherRepo.ErrVoucherNotFound
	}
	return &v, nil
}

// List возвращает ваучеры по фильтру
func (r *Vouchers) List(_ context.Context, filter voucherRepo.Filter) ([]*domain.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Voucher, 0)
	for _, row := range r.s.vouchers {
		v := row
		if filter.Type != nil && v.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		result = append(result, &v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// MarkApplied расходует ваучер
func (r *Vouchers) MarkApplied(_ context.Context, id int64) (bool, error) {
	return r.transition(id, domain.VoucherStatusActive, domain.VoucherStatusApplied, 1), nil
}

// Restore возвращает ваучер
func (r *Vouchers) Restore(_ context.Context, id int64) (bool, error) {
	return r.transition(id, domain.VoucherStatusApplied, domain.VoucherStatusActive, -1), nil
}

// UpdateStatus меняет статус ваучера
func (r *Vouchers) UpdateStatus(_ context.Context, id int64, from, to domain.VoucherStatus) (bool, error) {
	return r.transition(id, from, to, 0), nil
}

func (r *Vouchers) transition(id int64, from, to domain.VoucherStatus, delta int) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vouchers[id]
	if !ok || v.Status != from {
		return false
	}
	v.Status = to
	v.Count += delta
	if v.Count < 0 {
		v.Count = 0
	}
	r.s.vouchers[id] = v
	return true
}

// PutVoucher сохраняет ваучер как есть
func (s *Store) PutVoucher(voucher domain.Voucher) *domain.Voucher {
	s.mu.Lock()
	defer s.mu.Unlock()

	if voucher.ID == 0 {
		voucher.ID = s.id()
	}
	s.vouchers[voucher.ID] = voucher
	return &voucher
}

// Voucher возвращает текущее состояние ваучера
func (s *Store) Voucher(id int64) domain.Voucher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vouchers[id]
}
