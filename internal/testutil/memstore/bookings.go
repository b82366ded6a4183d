package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/booking"
)

type bookingRow = domain.Booking

// Bookings репозиторий бронирований в памяти
type Bookings struct{ s *Store }

// Bookings возвращает репозиторий бронирований
func (s *Store) Bookings() *Bookings { return &Bookings{s: s} }

// Create сохраняет бронирование
func (r *Bookings) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking.ID = r.s.id()
	booking.CreatedAt = r.s.now()
	booking.UpdatedAt = booking.CreatedAt
	r.s.bookings[booking.ID] = *booking
	return booking, nil
}

// GetByID возвращает копию бронирования
func (r *Bookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &row, nil
}

// GetDueForExpiry возвращает бронирования с истёкшим или незаданным дедлайном
func (r *Bookings) GetDueForExpiry(_ context.Context, statuses []domain.BookingStatus, now time.Time) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		return b.Status.In(statuses) && b.IsPaymentOverdue(now)
	}), nil
}

// GetByStatus возвращает бронирования в статусе
func (r *Bookings) GetByStatus(_ context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.Status == status }), nil
}

// GetByWalkID возвращает бронирования прогулки
func (r *Bookings) GetByWalkID(_ context.Context, walkID int64) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.WalkID == walkID }), nil
}

// GetPaidWithFinishedWalk возвращает оплаченные бронирования закончившихся прогулок
func (r *Bookings) GetPaidWithFinishedWalk(_ context.Context, now time.Time) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	ended := make(map[int64]bool, len(r.s.walks))
	for id, w := range r.s.walks {
		ended[id] = !w.EndTime.After(now)
	}
	r.s.mu.Unlock()

	return r.filter(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusPaid && ended[b.WalkID]
	}), nil
}

// TransitionStatus меняет статус, если текущий входит в from
func (r *Bookings) TransitionStatus(_ context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus, reason *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.bookings[id]
	if !ok || !row.Status.In(from) {
		return false, nil
	}
	row.Status = to
	if reason != nil {
		row.CancellationReason = reason
	}
	row.UpdatedAt = r.s.now()
	r.s.bookings[id] = row
	return true, nil
}

// OpenPayment привязывает платёж к черновику
func (r *Bookings) OpenPayment(_ context.Context, bookingID, paymentID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.bookings[bookingID]
	if !ok || row.Status != domain.BookingStatusDraft {
		return false, nil
	}
	row.PaymentID = &paymentID
	row.Status = domain.BookingStatusWaitingForPayment
	r.s.bookings[bookingID] = row
	return true, nil
}

// CountByPhoneAndStatus считает бронирования клиента с телефоном в статусе
func (r *Bookings) CountByPhoneAndStatus(_ context.Context, phone string, status domain.BookingStatus) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, b := range r.s.bookings {
		if c, ok := r.s.clients[b.ClientID]; ok && c.Phone == phone && b.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *Bookings) filter(match func(b *domain.Booking) bool) []*domain.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, row := range r.s.bookings {
		b := row
		if match(&b) {
			result = append(result, &b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// PutBooking сохраняет бронирование как есть
func (s *Store) PutBooking(booking domain.Booking) *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.ID == 0 {
		booking.ID = s.id()
	}
	s.bookings[booking.ID] = booking
	return &booking
}

// Booking возвращает текущее состояние бронирования
func (s *Store) Booking(id int64) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

// BookingCount возвращает количество бронирований
func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}
