package discount

import (
	"context"
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
	"github.com/m04kA/SMC-WalkBookingService/internal/testutil/memstore"
	"github.com/m04kA/SMC-WalkBookingService/pkg/logger"
	"github.com/m04kA/SMC-WalkBookingService/pkg/metrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newManager(t *testing.T, settings Settings) (*Manager, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	m := NewManager(
		store.Vouchers(),
		store.Bookings(),
		locker.NewLocalLocker(),
		settings,
		metrics.NewWithRegistry("test", prometheus.NewRegistry()),
		logger.NewWithWriter(io.Discard, "error"),
	).WithTimeProvider(fixedTime{now})
	return m, store
}

func request(price string, quantity int, code string) domain.DiscountRequest {
	return domain.DiscountRequest{RouteID: 1, PriceForOne: d(price), Quantity: quantity, Code: code}
}

func assertPrice(t *testing.T, r *domain.DiscountResult, total, unit string) {
	t.Helper()
	assert.True(t, r.TotalCost.Equal(d(total)), "total=%s want %s", r.TotalCost, total)
	assert.True(t, r.PriceForOne.Equal(d(unit)), "unit=%s want %s", r.PriceForOne, unit)
}

func TestManager_Scenarios(t *testing.T) {
	m, store := newManager(t, Settings{})
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypeCertificate, Status: domain.VoucherStatusActive, Code: "CERT20", DiscountAbsolute: d("20.00")})
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypeCertificate, Status: domain.VoucherStatusActive, Code: "CERTBIG", DiscountAbsolute: d("10000.00")})
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypePromoCode, Status: domain.VoucherStatusActive, Code: "TEN", DiscountPercent: d("10")})
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypePromoCode, Status: domain.VoucherStatusActive, Code: "FIVE", DiscountAbsolute: d("5.00")})

	tests := []struct {
		name  string
		req   domain.DiscountRequest
		typ   domain.DiscountType
		total string
		unit  string
	}{
		{"certificate", request("100.00", 2, "CERT20"), domain.DiscountTypeCertificate, "180", "90"},
		{"certificate floored", request("3000.00", 3, "CERTBIG"), domain.DiscountTypeCertificate, "0", "0"},
		{"promo percent", request("100.00", 2, "TEN"), domain.DiscountTypePromoCode, "180", "90"},
		{"promo absolute", request("50.00", 3, "FIVE"), domain.DiscountTypePromoCode, "135", "45"},
		{"unknown code falls through", request("50.00", 3, "NOPE"), domain.DiscountTypeNone, "150", "50"},
		{"no code", request("50.00", 1, ""), domain.DiscountTypeNone, "50", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := m.Quote(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, r.Type)
			assertPrice(t, r, tt.total, tt.unit)
		})
	}
}

func TestManager_InactiveVoucherReturnsFullPriceWithReason(t *testing.T) {
	m, store := newManager(t, Settings{GroupEnabled: true, GroupMinPlaces: 1, GroupPercent: d("50")})
	past := now.Add(-time.Hour)
	other := int64(9)
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypeCertificate, Status: domain.VoucherStatusApplied, Code: "USED", DiscountAbsolute: d("20")})
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypePromoCode, Status: domain.VoucherStatusActive, Code: "OLD", ExpiresAt: &past, DiscountPercent: d("10")})
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypePromoCode, Status: domain.VoucherStatusActive, Code: "ELSEWHERE", RouteID: &other, DiscountPercent: d("10")})

	tests := []struct {
		code   string
		typ    domain.DiscountType
		status domain.DiscountStatus
	}{
		{"USED", domain.DiscountTypeCertificate, domain.DiscountStatusAlreadyApplied},
		{"OLD", domain.DiscountTypePromoCode, domain.DiscountStatusExpired},
		{"ELSEWHERE", domain.DiscountTypePromoCode, domain.DiscountStatusNotApplied},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			r, err := m.Quote(context.Background(), request("100.00", 2, tt.code))
			require.NoError(t, err)
			assert.Equal(t, tt.typ, r.Type)
			assert.Equal(t, tt.status, r.Status)
			assertPrice(t, r, "200", "100")
			assert.True(t, r.DiscountPercent.IsZero())
			assert.True(t, r.DiscountAbsolute.IsZero())
		})
	}
}

func TestManager_GroupDiscount(t *testing.T) {
	m, store := newManager(t, Settings{GroupEnabled: true, GroupMinPlaces: 5, GroupPercent: d("10"), GroupAbsolute: d("0")})
	store.PutVoucher(domain.Voucher{Type: domain.VoucherTypePromoCode, Status: domain.VoucherStatusApplied, Code: "USED"})

	r, err := m.Quote(context.Background(), request("100.00", 5, ""))
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountTypeGroup, r.Type)
	assertPrice(t, r, "450", "90")

	r, err = m.Quote(context.Background(), request("100.00", 4, ""))
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountTypeNone, r.Type)

	// код передан: групповая скидка не применяется, даже если ваучер неизвестен
	r, err = m.Quote(context.Background(), request("100.00", 5, "UNKNOWN"))
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountTypeNone, r.Type)

	m.settings.GroupEnabled = false
	r, err = m.Quote(context.Background(), request("100.00", 5, ""))
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountTypeNone, r.Type)
}

func TestManager_RepeatedBookingDiscount(t *testing.T) {
	m, store := newManager(t, Settings{RepeatedEnabled: true, RepeatedPercent: d("5"), RepeatedAbsolute: d("0")})
	client := store.PutClient(domain.Client{Name: "Anna", Phone: "+79990000000"})
	store.PutBooking(domain.Booking{ClientID: client.ID, Status: domain.BookingStatusExpired, NumberOfPeople: 1})

	req := request("200.00", 2, "")
	req.Phone = client.Phone

	r, err := m.Quote(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountTypeNone, r.Type)

	store.PutBooking(domain.Booking{ClientID: client.ID, Status: domain.BookingStatusCompleted, NumberOfPeople: 1})

	r, err = m.Quote(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountTypeRepeatedBooking, r.Type)
	assertPrice(t, r, "380", "190")
}

func TestManager_ApplyConsumesVoucherOnce(t *testing.T) {
	m, store := newManager(t, Settings{})
	v := store.PutVoucher(domain.Voucher{Type: domain.VoucherTypePromoCode, Status: domain.VoucherStatusActive, Code: "ONCE", DiscountPercent: d("10")})

	first, err := m.Apply(context.Background(), request("100.00", 2, "ONCE"))
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountStatusActive, first.Status)
	assertPrice(t, first, "180", "90")

	stored := store.Voucher(v.ID)
	assert.Equal(t, domain.VoucherStatusApplied, stored.Status)
	assert.Equal(t, 1, stored.Count)

	second, err := m.Apply(context.Background(), request("100.00", 2, "ONCE"))
	require.NoError(t, err)
	assert.Equal(t, domain.DiscountStatusAlreadyApplied, second.Status)
	assertPrice(t, second, "200", "100")
	assert.Equal(t, 1, store.Voucher(v.ID).Count)
}

func TestManager_ConcurrentApplyGrantsOneDiscount(t *testing.T) {
	m, store := newManager(t, Settings{})
	v := store.PutVoucher(domain.Voucher{Type: domain.VoucherTypeCertificate, Status: domain.VoucherStatusActive, Code: "GIFT", DiscountAbsolute: d("50")})

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		active int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := m.Apply(context.Background(), request("100.00", 1, "GIFT"))
			if !assert.NoError(t, err) {
				return
			}
			if r.IsActive() {
				mu.Lock()
				active++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, active)
	assert.Equal(t, 1, store.Voucher(v.ID).Count)
}

func TestManager_Restore(t *testing.T) {
	m, store := newManager(t, Settings{})
	v := store.PutVoucher(domain.Voucher{Type: domain.VoucherTypeCertificate, Status: domain.VoucherStatusActive, Code: "GIFT", DiscountAbsolute: d("50")})

	r, err := m.Apply(context.Background(), request("100.00", 1, "GIFT"))
	require.NoError(t, err)
	require.NoError(t, m.Restore(context.Background(), r))

	stored := store.Voucher(v.ID)
	assert.Equal(t, domain.VoucherStatusActive, stored.Status)
	assert.Equal(t, 0, stored.Count)

	// результат без ваучера ничего не трогает
	assert.NoError(t, m.Restore(context.Background(), &domain.DiscountResult{Type: domain.DiscountTypeGroup, Status: domain.DiscountStatusActive}))
	assert.NoError(t, m.Restore(context.Background(), &domain.DiscountResult{Type: domain.DiscountTypePromoCode, Status: domain.DiscountStatusExpired, VoucherID: ptr.Ptr(v.ID)}))
}

func TestManager_RejectsBadInputBeforeChain(t *testing.T) {
	m, _ := newManager(t, Settings{})

	_, err := m.Quote(context.Background(), request("100.00", 0, ""))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = m.Apply(context.Background(), request("-1", 1, ""))
	assert.ErrorIs(t, err, ErrInvalidPrice)
}
