package create_booking

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
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/locker"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
	walkRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/walk"
	"github.com/m04kA/SMC-WalkBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/capacity"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/discount"
	"github.com/m04kA/SMC-WalkBookingService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WalkBookingService/pkg/logger"
	"github.com/m04kA/SMC-WalkBookingService/pkg/metrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeGateway struct {
	mu       sync.Mutex
	err      error
	requests []paymentgateway.InvoiceRequest
}

func (g *fakeGateway) OpenInvoice(_ context.Context, in paymentgateway.InvoiceRequest) (*paymentgateway.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, in)
	return &paymentgateway.Invoice{ID: "inv-1", Link: "https://pay.example/inv-1"}, nil
}

type fixture struct {
	uc      *UseCase
	store   *memstore.Store
	gateway *fakeGateway
	walk    *domain.Walk
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	route := store.PutRoute(domain.Route{ServiceName: "Вечерняя прогулка", PriceForOne: decimal.NewFromInt(100)})
	walk := store.PutWalk(domain.Walk{
		RouteID:         route.ID,
		Status:          domain.WalkStatusBookingInProgress,
		MaxPlaces:       10,
		AvailablePlaces: 10,
		PriceForOne:     decimal.NewFromInt(100),
		StartTime:       now.Add(48 * time.Hour),
		EndTime:         now.Add(50 * time.Hour),
		DurationMinutes: 120,
	})

	log := logger.NewWithWriter(io.Discard, "error")
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	gateway := &fakeGateway{}

	uc := NewUseCase(Dependencies{
		WalkRepo:    store.Walks(),
		RouteRepo:   store.Routes(),
		ClientRepo:  store.Clients(),
		BookingRepo: store.Bookings(),
		PaymentRepo: store.Payments(),
		Capacity:    capacity.NewService(store.Walks(), m, log, 0),
		Discounts:   discount.NewManager(store.Vouchers(), store.Bookings(), locker.NewLocalLocker(), discount.Settings{}, m, log),
		Gateway:     gateway,
		Publisher:   queue.NopPublisher{},
		Metrics:     m,
		TxManager:   memstore.TxManager{},
		Logger:      log,
	}, 15*time.Minute).WithTimeProvider(fixedTime{now})

	return &fixture{uc: uc, store: store, gateway: gateway, walk: walk}
}

func validRequest(walkID int64, people int) *Request {
	return &Request{
		WalkID:            walkID,
		NumberOfPeople:    people,
		Name:              "Анна",
		Phone:             "+79990000001",
		AgreementAccepted: true,
	}
}

func TestUseCase_CreatesBookingWaitingForPayment(t *testing.T) {
	f := newFixture(t)
	f.store.PutVoucher(domain.Voucher{
		Type:             domain.VoucherTypeCertificate,
		Status:           domain.VoucherStatusActive,
		Code:             "CERT20",
		DiscountAbsolute: decimal.NewFromInt(20),
	})

	req := validRequest(f.walk.ID, 2)
	req.PromoCode = ptr.Ptr("CERT20")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(domain.BookingStatusWaitingForPayment), resp.Status)
	assert.True(t, resp.TotalCost.Equal(decimal.NewFromInt(180)))
	assert.True(t, resp.PriceForOne.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, string(domain.DiscountTypeCertificate), resp.DiscountType)
	assert.Equal(t, now.Add(15*time.Minute), resp.EndTime)
	assert.Equal(t, "https://pay.example/inv-1", resp.InvoiceLink)

	booking := f.store.Booking(resp.ID)
	require.NotNil(t, booking.PaymentID)
	assert.Equal(t, resp.PaymentID, *booking.PaymentID)

	payment := f.store.Payment(resp.PaymentID)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Equal(t, "inv-1", payment.InvoiceID)
	assert.Equal(t, now.Add(15*time.Minute), payment.LatestPaymentTime)

	walk := f.store.Walk(f.walk.ID)
	assert.Equal(t, 2, walk.ReservedPlaces)
	assert.Equal(t, 8, walk.AvailablePlaces)

	require.Len(t, f.gateway.requests, 1)
	assert.True(t, f.gateway.requests[0].Amount.Equal(decimal.NewFromInt(180)))
}

func TestUseCase_CapacityExceeded(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), validRequest(f.walk.ID, 11))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 0, f.store.BookingCount())
	assert.Equal(t, 10, f.store.Walk(f.walk.ID).AvailablePlaces)
}

func TestUseCase_WalkNotOpen(t *testing.T) {
	f := newFixture(t)
	closed := f.store.PutWalk(domain.Walk{
		RouteID:         f.walk.RouteID,
		Status:          domain.WalkStatusBookingPaused,
		MaxPlaces:       5,
		AvailablePlaces: 5,
	})

	_, err := f.uc.Execute(context.Background(), validRequest(closed.ID, 1))
	assert.ErrorIs(t, err, ErrWalkNotOpen)
}

func TestUseCase_ValidatesInput(t *testing.T) {
	f := newFixture(t)

	req := validRequest(f.walk.ID, 1)
	req.AgreementAccepted = false
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAgreementRequired)

	_, err = f.uc.Execute(context.Background(), validRequest(f.walk.ID, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), validRequest(9999, 1))
	assert.ErrorIs(t, err, ErrWalkNotFound)
}

func TestUseCase_InvoiceFailureCompensates(t *testing.T) {
	f := newFixture(t)
	voucher := f.store.PutVoucher(domain.Voucher{
		Type:            domain.VoucherTypePromoCode,
		Status:          domain.VoucherStatusActive,
		Code:            "TEN",
		DiscountPercent: decimal.NewFromInt(10),
	})
	f.gateway.err = errors.New("gateway timeout")

	req := validRequest(f.walk.ID, 3)
	req.PromoCode = ptr.Ptr("TEN")

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrPaymentUnavailable)

	walk := f.store.Walk(f.walk.ID)
	assert.Equal(t, 0, walk.ReservedPlaces)
	assert.Equal(t, 10, walk.AvailablePlaces)

	bookings, err := f.store.Bookings().GetByWalkID(context.Background(), f.walk.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.BookingStatusRejected, bookings[0].Status)
	assert.Nil(t, bookings[0].PaymentID)
	assert.Equal(t, 0, f.store.PaymentCount())

	restored := f.store.Voucher(voucher.ID)
	assert.Equal(t, domain.VoucherStatusActive, restored.Status)
	assert.Equal(t, 0, restored.Count)
}

func TestUseCase_ConcurrentBookingsDoNotOversell(t *testing.T) {
	f := newFixture(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		booked   int
		rejected int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), validRequest(f.walk.ID, 3))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked += 3
			case errors.Is(err, ErrCapacityExceeded):
				rejected++
			default:
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 9, booked)
	assert.Equal(t, 9, rejected)
	walk := f.store.Walk(f.walk.ID)
	assert.Equal(t, 9, walk.ReservedPlaces)
	assert.Equal(t, 1, walk.AvailablePlaces)
}

// busyWalks не даёт изменить места, хотя они свободны
type busyWalks struct {
	*memstore.Walks
}

func (w busyWalks) ReservePlaces(context.Context, int64, int) (*domain.Walk, error) {
	return nil, walkRepo.ErrConditionNotMet
}

func TestUseCase_BusyWalkLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	voucher := f.store.PutVoucher(domain.Voucher{
		Type:            domain.VoucherTypePromoCode,
		Status:          domain.VoucherStatusActive,
		Code:            "TEN",
		DiscountPercent: decimal.NewFromInt(10),
	})
	log := logger.NewWithWriter(io.Discard, "error")
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	f.uc.Capacity = capacity.NewService(busyWalks{Walks: f.store.Walks()}, m, log, 0)

	req := validRequest(f.walk.ID, 2)
	req.PromoCode = ptr.Ptr("TEN")

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrWalkBusy)
	assert.NotErrorIs(t, err, ErrInternal)

	walk := f.store.Walk(f.walk.ID)
	assert.Equal(t, 0, walk.ReservedPlaces)
	assert.Equal(t, 10, walk.AvailablePlaces)
	assert.Equal(t, 0, f.store.BookingCount())
	assert.Equal(t, 0, f.store.PaymentCount())
	assert.Empty(t, f.gateway.requests)

	stored := f.store.Voucher(voucher.ID)
	assert.Equal(t, domain.VoucherStatusActive, stored.Status)
	assert.Equal(t, 0, stored.Count)
}
