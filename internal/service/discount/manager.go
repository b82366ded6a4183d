package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	voucherRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/voucher"
)

const (
	modeQuote = "quote"
	modeApply = "apply"

	defaultLockWait = 5 * time.Second
)

// chain порядок обработчиков скидок
// Первый обработчик, не отказавшийся от запроса, определяет цену
var chain = []domain.DiscountType{
	domain.DiscountTypeCertificate,
	domain.DiscountTypePromoCode,
	domain.DiscountTypeGroup,
	domain.DiscountTypeRepeatedBooking,
	domain.DiscountTypeNone,
}

// Manager цепочка скидок
type Manager struct {
	voucherRepo  VoucherRepository
	bookingRepo  BookingRepository
	locker       Locker
	settings     Settings
	lockWait     time.Duration
	metrics      MetricsCollector
	timeProvider TimeProvider
	logger       Logger
}

// NewManager создает новый экземпляр менеджера скидок
func NewManager(
	voucherRepo VoucherRepository,
	bookingRepo BookingRepository,
	locker Locker,
	settings Settings,
	metrics MetricsCollector,
	logger Logger,
) *Manager {
	return &Manager{
		voucherRepo:  voucherRepo,
		bookingRepo:  bookingRepo,
		locker:       locker,
		settings:     settings,
		lockWait:     defaultLockWait,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (m *Manager) WithTimeProvider(tp TimeProvider) *Manager {
	m.timeProvider = tp
	return m
}

// WithLockWait ограничивает ожидание блокировки ваучера
func (m *Manager) WithLockWait(wait time.Duration) *Manager {
	if wait > 0 {
		m.lockWait = wait
	}
	return m
}

// Quote рассчитывает цену без побочных эффектов
func (m *Manager) Quote(ctx context.Context, req domain.DiscountRequest) (*domain.DiscountResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	voucher, err := m.findVoucher(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	result, err := m.run(ctx, req, voucher)
	if err != nil {
		return nil, err
	}

	m.metrics.IncDiscountResult(string(result.Type), string(result.Status), modeQuote)
	return result, nil
}

// Apply рассчитывает цену и, если скидка получена по активному ваучеру, расходует его
// Расход одного кода сериализован блокировкой по коду
func (m *Manager) Apply(ctx context.Context, req domain.DiscountRequest) (*domain.DiscountResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	if req.Code != "" {
		lockCtx, cancel := context.WithTimeout(ctx, m.lockWait)
		unlock, err := m.locker.Lock(lockCtx, "voucher:"+req.Code)
		cancel()
		if err != nil {
			m.logger.Warn("Apply: failed to lock voucher code=%s: %v", req.Code, err)
			return nil, fmt.Errorf("%w: %v", ErrVoucherBusy, err)
		}
		defer unlock()
	}

	voucher, err := m.findVoucher(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	result, err := m.run(ctx, req, voucher)
	if err != nil {
		return nil, err
	}

	if result.ConsumesVoucher() {
		applied, err := m.voucherRepo.MarkApplied(ctx, *result.VoucherID)
		if err != nil {
			m.logger.Error("Apply: failed to mark voucher id=%d applied: %v", *result.VoucherID, err)
			return nil, fmt.Errorf("%w: Apply - mark applied: %v", ErrInternal, err)
		}
		if !applied {
			m.logger.Warn("Apply: voucher id=%d was consumed concurrently", *result.VoucherID)
			fallback := domain.NewFullPriceResult(result.Type, domain.DiscountStatusAlreadyApplied, req.PriceForOne, req.Quantity)
			fallback.VoucherID = result.VoucherID
			fallback.Code = result.Code
			result = fallback
		} else {
			m.logger.Info("Apply: voucher id=%d code=%s consumed", *result.VoucherID, result.Code)
		}
	}

	m.metrics.IncDiscountResult(string(result.Type), string(result.Status), modeApply)
	return result, nil
}

// Restore возвращает ваучер, израсходованный результатом Apply
// Используется при откате создания бронирования
func (m *Manager) Restore(ctx context.Context, result *domain.DiscountResult) error {
	if result == nil || !result.ConsumesVoucher() {
		return nil
	}

	restored, err := m.voucherRepo.Restore(ctx, *result.VoucherID)
	if err != nil {
		m.logger.Error("Restore: failed to restore voucher id=%d: %v", *result.VoucherID, err)
		return fmt.Errorf("%w: Restore: %v", ErrInternal, err)
	}
	if !restored {
		m.logger.Warn("Restore: voucher id=%d was not in APPLIED status", *result.VoucherID)
		return nil
	}

	m.logger.Info("Restore: voucher id=%d code=%s restored", *result.VoucherID, result.Code)
	return nil
}

func (m *Manager) run(ctx context.Context, req domain.DiscountRequest, voucher *domain.Voucher) (*domain.DiscountResult, error) {
	for _, kind := range chain {
		result, err := m.quoteWith(ctx, kind, req, voucher)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}
	// недостижимо: последний обработчик применим всегда
	return domain.NewFullPriceResult(domain.DiscountTypeNone, domain.DiscountStatusNone, req.PriceForOne, req.Quantity), nil
}

// quoteWith возвращает nil, если обработчик kind отказался от запроса
func (m *Manager) quoteWith(ctx context.Context, kind domain.DiscountType, req domain.DiscountRequest, voucher *domain.Voucher) (*domain.DiscountResult, error) {
	switch kind {
	case domain.DiscountTypeCertificate:
		if voucher == nil || voucher.Type != domain.VoucherTypeCertificate {
			return nil, nil
		}
		return m.voucherResult(kind, req, voucher, func() *domain.DiscountResult {
			cost := domain.CertificateCost(req.PriceForOne, req.Quantity, voucher.DiscountAbsolute)
			return domain.NewPricedResult(kind, domain.DiscountStatusActive, cost, req.Quantity, voucher.DiscountPercent, voucher.DiscountAbsolute)
		}), nil

	case domain.DiscountTypePromoCode:
		if voucher == nil || voucher.Type != domain.VoucherTypePromoCode {
			return nil, nil
		}
		return m.voucherResult(kind, req, voucher, func() *domain.DiscountResult {
			cost := domain.PercentCost(req.PriceForOne, req.Quantity, voucher.DiscountPercent, voucher.DiscountAbsolute)
			return domain.NewPricedResult(kind, domain.DiscountStatusActive, cost, req.Quantity, voucher.DiscountPercent, voucher.DiscountAbsolute)
		}), nil

	case domain.DiscountTypeGroup:
		s := m.settings
		if !s.GroupEnabled || req.Code != "" || req.Quantity < s.GroupMinPlaces {
			return nil, nil
		}
		cost := domain.PercentCost(req.PriceForOne, req.Quantity, s.GroupPercent, s.GroupAbsolute)
		return domain.NewPricedResult(kind, domain.DiscountStatusActive, cost, req.Quantity, s.GroupPercent, s.GroupAbsolute), nil

	case domain.DiscountTypeRepeatedBooking:
		s := m.settings
		if !s.RepeatedEnabled || req.Phone == "" {
			return nil, nil
		}
		completed, err := m.bookingRepo.CountByPhoneAndStatus(ctx, req.Phone, domain.BookingStatusCompleted)
		if err != nil {
			m.logger.Error("Quote: failed to count completed bookings: %v", err)
			return nil, fmt.Errorf("%w: count completed bookings: %v", ErrInternal, err)
		}
		if completed == 0 {
			return nil, nil
		}
		cost := domain.PercentCost(req.PriceForOne, req.Quantity, s.RepeatedPercent, s.RepeatedAbsolute)
		return domain.NewPricedResult(kind, domain.DiscountStatusActive, cost, req.Quantity, s.RepeatedPercent, s.RepeatedAbsolute), nil

	case domain.DiscountTypeNone:
		return domain.NewFullPriceResult(kind, domain.DiscountStatusNone, req.PriceForOne, req.Quantity), nil
	}

	return nil, nil
}

// voucherResult возвращает цену по ваучеру либо полную цену с причиной, по которой ваучер неприменим
func (m *Manager) voucherResult(kind domain.DiscountType, req domain.DiscountRequest, voucher *domain.Voucher, priced func() *domain.DiscountResult) *domain.DiscountResult {
	var result *domain.DiscountResult

	status := voucher.Usability(req.RouteID, m.timeProvider.Now())
	if status == domain.DiscountStatusActive {
		result = priced()
	} else {
		m.logger.Info("Quote: voucher code=%s is not usable: %s", voucher.Code, status)
		result = domain.NewFullPriceResult(kind, status, req.PriceForOne, req.Quantity)
	}

	result.VoucherID = &voucher.ID
	result.Code = voucher.Code
	return result
}

func (m *Manager) findVoucher(ctx context.Context, code string) (*domain.Voucher, error) {
	if code == "" {
		return nil, nil
	}

	voucher, err := m.voucherRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, voucherRepo.ErrVoucherNotFound) {
			m.logger.Info("Quote: voucher code=%s not found", code)
			return nil, nil
		}
		m.logger.Error("Quote: failed to get voucher code=%s: %v", code, err)
		return nil, fmt.Errorf("%w: get voucher: %v", ErrInternal, err)
	}

	return voucher, nil
}

func validate(req domain.DiscountRequest) error {
	if err := domain.ValidatePricing(req.PriceForOne, req.Quantity); err != nil {
		if errors.Is(err, domain.ErrInvalidQuantity) {
			return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	return nil
}
