package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/capacity"
	"github.com/m04kA/SMC-WalkBookingService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WalkBookingService/pkg/logger"
	"github.com/m04kA/SMC-WalkBookingService/pkg/metrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

var now = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeGateway struct {
	mu       sync.Mutex
	statuses map[string]domain.InvoiceStatus
	errs     map[string]error
}

func (g *fakeGateway) GetInvoiceStatus(_ context.Context, invoiceID string) (domain.InvoiceStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.errs[invoiceID]; ok {
		return "", err
	}
	if status, ok := g.statuses[invoiceID]; ok {
		return status, nil
	}
	return domain.InvoiceStatusPending, nil
}

// failingBookings отказывает на одном бронировании, остальные передаёт настоящему сервису
type failingBookings struct {
	BookingService
	failID int64
}

func (f failingBookings) Expire(ctx context.Context, id int64) (bool, error) {
	if id == f.failID {
		return false, errors.New("database is gone")
	}
	return f.BookingService.Expire(ctx, id)
}

type fixture struct {
	scheduler *Scheduler
	store     *memstore.Store
	gateway   *fakeGateway
	metrics   *metrics.Metrics
	walk      *domain.Walk
	service   *bookings.Service
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	store := memstore.New()
	walk := store.PutWalk(domain.Walk{
		RouteID:         1,
		Status:          domain.WalkStatusBookingInProgress,
		MaxPlaces:       20,
		ReservedPlaces:  0,
		AvailablePlaces: 20,
		PriceForOne:     decimal.NewFromInt(100),
		StartTime:       now.Add(24 * time.Hour),
		EndTime:         now.Add(26 * time.Hour),
		DurationMinutes: 120,
	})

	log := logger.NewWithWriter(io.Discard, "error")
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	svc := bookings.NewService(
		store.Bookings(), store.Payments(),
		capacity.NewService(store.Walks(), m, log, 0),
		queue.NopPublisher{}, m, memstore.TxManager{}, log,
	).WithTimeProvider(fixedTime{now})

	gateway := &fakeGateway{statuses: map[string]domain.InvoiceStatus{}, errs: map[string]error{}}
	s := New(cfg, store.Bookings(), store.Payments(), svc, gateway, m, log).WithTimeProvider(fixedTime{now})

	return &fixture{scheduler: s, store: store, gateway: gateway, metrics: m, walk: walk, service: svc}
}

// book резервирует места и создаёт бронирование со счётом
func (f *fixture) book(t *testing.T, walkID int64, status domain.BookingStatus, people int, endTime *time.Time, invoiceID string) *domain.Booking {
	t.Helper()
	walk := f.store.Walk(walkID)
	walk.ReservedPlaces += people
	walk.AvailablePlaces -= people
	require.NoError(t, walk.CheckInvariant())
	f.store.PutWalk(walk)

	payment, err := f.store.Payments().Create(context.Background(), &domain.Payment{
		Status:    domain.PaymentStatusPending,
		Amount:    people,
		InvoiceID: invoiceID,
	})
	require.NoError(t, err)

	return f.store.PutBooking(domain.Booking{
		WalkID:         walkID,
		ClientID:       1,
		PaymentID:      ptr.Ptr(payment.ID),
		Status:         status,
		NumberOfPeople: people,
		EndTime:        endTime,
	})
}

func TestScheduler_SweepExpiredIsIdempotent(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	overdue := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 3, &past, "inv-1")
	noDeadline := f.book(t, f.walk.ID, domain.BookingStatusDraft, 2, nil, "")
	inTime := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 4, &future, "inv-2")
	paid := f.book(t, f.walk.ID, domain.BookingStatusPaid, 1, &past, "inv-3")

	report, err := f.scheduler.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Processed: 2, Transitioned: 2}, report)

	assert.Equal(t, domain.BookingStatusExpired, f.store.Booking(overdue.ID).Status)
	assert.Equal(t, domain.PaymentStatusExpired, f.store.Payment(*overdue.PaymentID).Status)
	assert.Equal(t, domain.BookingStatusExpired, f.store.Booking(noDeadline.ID).Status)
	assert.Equal(t, domain.BookingStatusWaitingForPayment, f.store.Booking(inTime.ID).Status)
	assert.Equal(t, domain.BookingStatusPaid, f.store.Booking(paid.ID).Status)

	walkAfterFirst := f.store.Walk(f.walk.ID)
	assert.Equal(t, 5, walkAfterFirst.ReservedPlaces)
	assert.Equal(t, 15, walkAfterFirst.AvailablePlaces)

	report, err = f.scheduler.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)

	walkAfterSecond := f.store.Walk(f.walk.ID)
	assert.Equal(t, walkAfterFirst.ReservedPlaces, walkAfterSecond.ReservedPlaces)
	assert.Equal(t, walkAfterFirst.AvailablePlaces, walkAfterSecond.AvailablePlaces)
}

func TestScheduler_SweepIsolatesFailures(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	past := now.Add(-time.Minute)

	broken := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 1, &past, "inv-1")
	healthy := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 1, &past, "inv-2")
	f.scheduler.bookings = failingBookings{BookingService: f.service, failID: broken.ID}

	report, err := f.scheduler.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Processed: 2, Transitioned: 1, Failed: 1}, report)

	assert.Equal(t, domain.BookingStatusWaitingForPayment, f.store.Booking(broken.ID).Status)
	assert.Equal(t, domain.BookingStatusExpired, f.store.Booking(healthy.ID).Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SchedulerItemFailures.WithLabelValues(JobExpiry)))
}

func TestScheduler_PollPayments(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	future := now.Add(time.Minute)

	paid := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 2, &future, "inv-paid")
	failed := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 3, &future, "inv-failed")
	pending := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 1, &future, "inv-pending")
	unreachable := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 1, &future, "inv-down")

	f.gateway.statuses["inv-paid"] = domain.InvoiceStatusPaid
	f.gateway.statuses["inv-failed"] = domain.InvoiceStatusFailed
	f.gateway.errs["inv-down"] = errors.New("503")

	report, err := f.scheduler.PollPayments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Processed: 4, Transitioned: 2, Failed: 1}, report)

	assert.Equal(t, domain.BookingStatusPaid, f.store.Booking(paid.ID).Status)
	assert.Equal(t, domain.PaymentStatusPaid, f.store.Payment(*paid.PaymentID).Status)

	assert.Equal(t, domain.BookingStatusCanceled, f.store.Booking(failed.ID).Status)
	assert.Equal(t, domain.PaymentStatusCanceled, f.store.Payment(*failed.PaymentID).Status)

	assert.Equal(t, domain.BookingStatusWaitingForPayment, f.store.Booking(pending.ID).Status)
	assert.Equal(t, domain.BookingStatusWaitingForPayment, f.store.Booking(unreachable.ID).Status)

	// Места отказавшегося от оплаты бронирования вернулись на прогулку
	assert.Equal(t, 4, f.store.Walk(f.walk.ID).ReservedPlaces)

	// Повторный прогон с доступной платёжной системой добирает оставшийся счёт
	delete(f.gateway.errs, "inv-down")
	f.gateway.statuses["inv-down"] = domain.InvoiceStatusPaid

	report, err = f.scheduler.PollPayments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Processed: 2, Transitioned: 1}, report)
	assert.Equal(t, domain.BookingStatusPaid, f.store.Booking(unreachable.ID).Status)
}

func TestScheduler_CompleteFinished(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	finished := f.store.PutWalk(domain.Walk{
		RouteID:         1,
		Status:          domain.WalkStatusBookingFinished,
		MaxPlaces:       5,
		AvailablePlaces: 5,
		StartTime:       now.Add(-3 * time.Hour),
		EndTime:         now.Add(-time.Hour),
	})
	past := now.Add(-4 * time.Hour)

	done := f.book(t, finished.ID, domain.BookingStatusPaid, 2, &past, "inv-1")
	upcoming := f.book(t, f.walk.ID, domain.BookingStatusPaid, 2, &past, "inv-2")

	report, err := f.scheduler.CompleteFinished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Processed: 1, Transitioned: 1}, report)

	assert.Equal(t, domain.BookingStatusCompleted, f.store.Booking(done.ID).Status)
	assert.Equal(t, domain.BookingStatusPaid, f.store.Booking(upcoming.ID).Status)
	assert.Equal(t, 2, f.store.Walk(finished.ID).ReservedPlaces)
}

func TestScheduler_StartAndStop(t *testing.T) {
	cfg := Config{
		ExpiryEnabled:  true,
		ExpiryInterval: 10 * time.Millisecond,
	}
	f := newFixture(t, cfg)
	past := now.Add(-time.Minute)
	booking := f.book(t, f.walk.ID, domain.BookingStatusWaitingForPayment, 2, &past, "inv-1")

	f.scheduler.Start(context.Background())
	assert.Eventually(t, func() bool {
		return f.store.Booking(booking.ID).Status == domain.BookingStatusExpired
	}, 2*time.Second, 10*time.Millisecond)

	f.scheduler.Stop()
	f.scheduler.Stop()

	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.SchedulerRunsTotal.WithLabelValues(JobExpiry, resultOK)), float64(1))
}
