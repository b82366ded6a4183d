package bookings

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/capacity"
	"github.com/m04kA/SMC-WalkBookingService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WalkBookingService/pkg/logger"
	"github.com/m04kA/SMC-WalkBookingService/pkg/metrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	svc       *Service
	store     *memstore.Store
	publisher *recordingPublisher
	walk      *domain.Walk
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	walk := store.PutWalk(domain.Walk{
		RouteID:         1,
		Status:          domain.WalkStatusBookingInProgress,
		MaxPlaces:       10,
		ReservedPlaces:  4,
		AvailablePlaces: 6,
		PriceForOne:     decimal.NewFromInt(100),
		StartTime:       now.Add(24 * time.Hour),
		EndTime:         now.Add(26 * time.Hour),
		DurationMinutes: 120,
	})

	log := logger.NewWithWriter(io.Discard, "error")
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	publisher := &recordingPublisher{}
	capacitySvc := capacity.NewService(store.Walks(), m, log, 0)
	svc := NewService(store.Bookings(), store.Payments(), capacitySvc, publisher, m, memstore.TxManager{}, log).
		WithTimeProvider(fixedTime{now: now})

	return &fixture{svc: svc, store: store, publisher: publisher, walk: walk, now: now}
}

// withBooking создаёт бронирование на 4 места со счётом в заданном статусе
func (f *fixture) withBooking(t *testing.T, status domain.BookingStatus, paymentStatus domain.PaymentStatus, endTime time.Time) *domain.Booking {
	t.Helper()
	payment, err := f.store.Payments().Create(context.Background(), &domain.Payment{
		Status:            paymentStatus,
		Amount:            4,
		PriceForOne:       decimal.NewFromInt(100),
		TotalCost:         decimal.NewFromInt(400),
		LatestPaymentTime: endTime,
	})
	require.NoError(t, err)

	return f.store.PutBooking(domain.Booking{
		WalkID:            f.walk.ID,
		ClientID:          1,
		PaymentID:         ptr.Ptr(payment.ID),
		Status:            status,
		NumberOfPeople:    4,
		EndTime:           ptr.Ptr(endTime),
		AgreementAccepted: true,
	})
}

func TestService_ExpireReleasesPlacesOnce(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusWaitingForPayment, domain.PaymentStatusPending, f.now.Add(-time.Minute))
	ctx := context.Background()

	changed, err := f.svc.Expire(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.svc.Expire(ctx, booking.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	stored := f.store.Booking(booking.ID)
	assert.Equal(t, domain.BookingStatusExpired, stored.Status)
	assert.Equal(t, domain.PaymentStatusExpired, f.store.Payment(*booking.PaymentID).Status)

	walk := f.store.Walk(f.walk.ID)
	assert.Equal(t, 0, walk.ReservedPlaces)
	assert.Equal(t, 10, walk.AvailablePlaces)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, queue.EventBookingExpired, f.publisher.events[0].Type)
	assert.Equal(t, booking.ID, f.publisher.events[0].BookingID)
}

func TestService_ExpireSkipsBookingWithinDeadline(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusWaitingForPayment, domain.PaymentStatusPending, f.now.Add(time.Minute))

	changed, err := f.svc.Expire(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.BookingStatusWaitingForPayment, f.store.Booking(booking.ID).Status)
	assert.Equal(t, 4, f.store.Walk(f.walk.ID).ReservedPlaces)
}

func TestService_ExpireDoesNotTouchPaidBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusPaid, domain.PaymentStatusPaid, f.now.Add(-time.Hour))

	changed, err := f.svc.Expire(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.BookingStatusPaid, f.store.Booking(booking.ID).Status)
	assert.Empty(t, f.publisher.events)
}

func TestService_ConcurrentExpireReleasesOnce(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusDraft, domain.PaymentStatusPending, f.now.Add(-time.Minute))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := f.svc.Expire(context.Background(), booking.ID)
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				changes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, changes)
	assert.Equal(t, 0, f.store.Walk(f.walk.ID).ReservedPlaces)
}

func TestService_ConfirmPayment(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusWaitingForPayment, domain.PaymentStatusPending, f.now.Add(time.Minute))

	changed, err := f.svc.ConfirmPayment(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, domain.BookingStatusPaid, f.store.Booking(booking.ID).Status)
	assert.Equal(t, domain.PaymentStatusPaid, f.store.Payment(*booking.PaymentID).Status)
	assert.Equal(t, 4, f.store.Walk(f.walk.ID).ReservedPlaces)

	changed, err = f.svc.ConfirmPayment(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestService_FailPayment(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusWaitingForPayment, domain.PaymentStatusPending, f.now.Add(time.Minute))

	changed, err := f.svc.FailPayment(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	stored := f.store.Booking(booking.ID)
	assert.Equal(t, domain.BookingStatusCanceled, stored.Status)
	require.NotNil(t, stored.CancellationReason)
	assert.Equal(t, PaymentFailedReason, *stored.CancellationReason)
	assert.Equal(t, domain.PaymentStatusCanceled, f.store.Payment(*booking.PaymentID).Status)
	assert.Equal(t, 0, f.store.Walk(f.walk.ID).ReservedPlaces)
}

func TestService_Cancel(t *testing.T) {
	tests := []struct {
		name          string
		status        domain.BookingStatus
		paymentStatus domain.PaymentStatus
		req           models.CancelBookingRequest
		wantStatus    domain.BookingStatus
		wantPayment   domain.PaymentStatus
		wantEvent     queue.EventType
	}{
		{
			name:          "waiting booking is canceled",
			status:        domain.BookingStatusWaitingForPayment,
			paymentStatus: domain.PaymentStatusPending,
			req:           models.CancelBookingRequest{CancellationReason: "client request"},
			wantStatus:    domain.BookingStatusCanceled,
			wantPayment:   domain.PaymentStatusCanceled,
			wantEvent:     queue.EventBookingCanceled,
		},
		{
			name:          "paid booking is refunded",
			status:        domain.BookingStatusPaid,
			paymentStatus: domain.PaymentStatusPaid,
			req:           models.CancelBookingRequest{CancellationReason: "walk moved"},
			wantStatus:    domain.BookingStatusCanceled,
			wantPayment:   domain.PaymentStatusRefunded,
			wantEvent:     queue.EventBookingCanceled,
		},
		{
			name:          "draft booking is rejected",
			status:        domain.BookingStatusDraft,
			paymentStatus: domain.PaymentStatusPending,
			req:           models.CancelBookingRequest{Reject: true},
			wantStatus:    domain.BookingStatusRejected,
			wantPayment:   domain.PaymentStatusCanceled,
			wantEvent:     queue.EventBookingRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			booking := f.withBooking(t, tt.status, tt.paymentStatus, f.now.Add(time.Hour))

			resp, err := f.svc.Cancel(context.Background(), booking.ID, tt.req)
			require.NoError(t, err)
			assert.Equal(t, string(tt.wantStatus), resp.Status)
			require.NotNil(t, resp.Payment)
			assert.Equal(t, string(tt.wantPayment), resp.Payment.Status)

			assert.Equal(t, 0, f.store.Walk(f.walk.ID).ReservedPlaces)
			require.Len(t, f.publisher.events, 1)
			assert.Equal(t, tt.wantEvent, f.publisher.events[0].Type)
		})
	}
}

func TestService_CancelTerminalBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusExpired, domain.PaymentStatusExpired, f.now.Add(-time.Hour))

	_, err := f.svc.Cancel(context.Background(), booking.ID, models.CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Equal(t, 4, f.store.Walk(f.walk.ID).ReservedPlaces)
}

func TestService_CompleteKeepsPlaces(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusPaid, domain.PaymentStatusPaid, f.now.Add(-time.Hour))

	changed, err := f.svc.Complete(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.BookingStatusCompleted, f.store.Booking(booking.ID).Status)
	assert.Equal(t, 4, f.store.Walk(f.walk.ID).ReservedPlaces)
}

func TestService_IgnoresTransitionsOutsideStatusGraph(t *testing.T) {
	tests := []struct {
		name   string
		status domain.BookingStatus
		run    func(s *Service, id int64) (bool, error)
	}{
		{
			name:   "complete unpaid",
			status: domain.BookingStatusWaitingForPayment,
			run:    func(s *Service, id int64) (bool, error) { return s.Complete(context.Background(), id) },
		},
		{
			name:   "confirm draft",
			status: domain.BookingStatusDraft,
			run:    func(s *Service, id int64) (bool, error) { return s.ConfirmPayment(context.Background(), id) },
		},
		{
			name:   "fail payment of draft",
			status: domain.BookingStatusDraft,
			run:    func(s *Service, id int64) (bool, error) { return s.FailPayment(context.Background(), id) },
		},
		{
			name:   "confirm completed",
			status: domain.BookingStatusCompleted,
			run:    func(s *Service, id int64) (bool, error) { return s.ConfirmPayment(context.Background(), id) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			booking := f.withBooking(t, tt.status, domain.PaymentStatusPending, f.now.Add(-time.Minute))

			changed, err := tt.run(f.svc, booking.ID)
			require.NoError(t, err)
			assert.False(t, changed)
			assert.Equal(t, tt.status, f.store.Booking(booking.ID).Status)
			assert.Equal(t, domain.PaymentStatusPending, f.store.Payment(*booking.PaymentID).Status)
			assert.Equal(t, 4, f.store.Walk(f.walk.ID).ReservedPlaces)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestService_CancelLeavesRefundedPaymentAlone(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusPaid, domain.PaymentStatusRefunded, f.now.Add(time.Hour))

	resp, err := f.svc.Cancel(context.Background(), booking.ID, models.CancelBookingRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCanceled), resp.Status)
	assert.Equal(t, domain.PaymentStatusRefunded, f.store.Payment(*booking.PaymentID).Status)
	assert.Equal(t, 0, f.store.Walk(f.walk.ID).ReservedPlaces)
}

func TestService_PublishFailureKeepsTransition(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	booking := f.withBooking(t, domain.BookingStatusWaitingForPayment, domain.PaymentStatusPending, f.now.Add(time.Minute))

	changed, err := f.svc.ConfirmPayment(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.BookingStatusPaid, f.store.Booking(booking.ID).Status)
}

func TestService_GetByID(t *testing.T) {
	f := newFixture(t)
	booking := f.withBooking(t, domain.BookingStatusWaitingForPayment, domain.PaymentStatusPending, f.now.Add(time.Minute))

	resp, err := f.svc.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, resp.ID)
	require.NotNil(t, resp.Payment)
	assert.True(t, resp.Payment.TotalCost.Equal(decimal.NewFromInt(400)))

	_, err = f.svc.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.svc.Expire(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestErrors_CarryPackagePrefix(t *testing.T) {
	for _, err := range []error{ErrBookingNotFound, ErrCannotCancel, ErrInternal} {
		assert.Regexp(t, "^bookings: ", err.Error())
	}
}
