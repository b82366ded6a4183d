package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
	routeRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/route"
	walkRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/walk"
	"github.com/m04kA/SMC-WalkBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/capacity"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/discount"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

// creationFailedReason причина отклонения бронирования, которое не удалось довести до оплаты
const creationFailedReason = "booking creation failed"

// Dependencies зависимости use case
type Dependencies struct {
	WalkRepo    WalkRepository
	RouteRepo   RouteRepository
	ClientRepo  ClientRepository
	BookingRepo BookingRepository
	PaymentRepo PaymentRepository
	Capacity    CapacityService
	Discounts   DiscountManager
	Gateway     PaymentGateway
	Publisher   EventPublisher
	Metrics     MetricsCollector
	TxManager   TransactionManager
	Logger      Logger
}

// UseCase use case для создания бронирования
// Создание охватывает учёт мест, ваучер и внешний счёт, поэтому выполняется шагами с компенсацией
type UseCase struct {
	Dependencies
	lifetime     time.Duration
	timeProvider TimeProvider
}

// NewUseCase создает новый экземпляр use case
// lifetime время на оплату счёта, при нуле используется domain.DefaultBookingLifetime
func NewUseCase(deps Dependencies, lifetime time.Duration) *UseCase {
	if lifetime <= 0 {
		lifetime = domain.DefaultBookingLifetime
	}
	return &UseCase{
		Dependencies: deps,
		lifetime:     lifetime,
		timeProvider: &RealTimeProvider{},
	}
}

// WithTimeProvider подменяет источник времени (используется в тестах)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// saga выполненные шаги, которые нужно откатить при ошибке
type saga struct {
	walkID   int64
	places   int
	reserved bool
	booking  *domain.Booking
	discount *domain.DiscountResult
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	uc.Logger.Info("CreateBooking: walk=%d, people=%d, phone=%s", req.WalkID, req.NumberOfPeople, req.Phone)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.Logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем прогулку и проверяем, что запись открыта
	walk, err := uc.WalkRepo.GetByID(ctx, req.WalkID)
	if err != nil {
		if errors.Is(err, walkRepo.ErrWalkNotFound) {
			uc.Logger.Warn("CreateBooking: walk id=%d not found", req.WalkID)
			return nil, ErrWalkNotFound
		}
		uc.Logger.Error("CreateBooking: failed to get walk id=%d: %v", req.WalkID, err)
		return nil, fmt.Errorf("%w: failed to get walk: %v", ErrInternal, err)
	}
	if !walk.IsOpenForBooking() {
		uc.Logger.Warn("CreateBooking: walk id=%d is in status %s", walk.ID, walk.Status)
		return nil, ErrWalkNotOpen
	}

	// 3. Получаем маршрут для описания счёта
	route, err := uc.RouteRepo.GetByID(ctx, walk.RouteID)
	if err != nil {
		if errors.Is(err, routeRepo.ErrRouteNotFound) {
			uc.Logger.Warn("CreateBooking: route id=%d of walk id=%d not found", walk.RouteID, walk.ID)
			return nil, ErrRouteNotFound
		}
		uc.Logger.Error("CreateBooking: failed to get route id=%d: %v", walk.RouteID, err)
		return nil, fmt.Errorf("%w: failed to get route: %v", ErrInternal, err)
	}

	state := &saga{walkID: walk.ID, places: req.NumberOfPeople}
	defer func() {
		if err != nil {
			uc.compensate(ctx, state)
		}
	}()

	// 4. Резервируем места, статус прогулки проверяется повторно на записываемой версии
	if _, err := uc.Capacity.Reserve(ctx, walk.ID, req.NumberOfPeople); err != nil {
		return nil, uc.mapCapacityError(walk.ID, err)
	}
	state.reserved = true

	// 5. Регистрируем клиента
	client, err := uc.ClientRepo.Upsert(ctx, &domain.Client{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		uc.Logger.Error("CreateBooking: failed to upsert client phone=%s: %v", req.Phone, err)
		return nil, fmt.Errorf("%w: failed to upsert client: %v", ErrInternal, err)
	}

	// 6. Рассчитываем цену и расходуем ваучер
	price, err := uc.Discounts.Apply(ctx, domain.DiscountRequest{
		RouteID:     walk.RouteID,
		PriceForOne: walk.PriceForOne,
		Quantity:    req.NumberOfPeople,
		Code:        promoCode(req),
		Phone:       req.Phone,
	})
	if err != nil {
		if errors.Is(err, discount.ErrVoucherBusy) {
			uc.Logger.Warn("CreateBooking: voucher is busy: %v", err)
			return nil, ErrVoucherBusy
		}
		uc.Logger.Error("CreateBooking: failed to apply discount: %v", err)
		return nil, fmt.Errorf("%w: failed to apply discount: %v", ErrInternal, err)
	}
	state.discount = price

	// 7. Создаем черновик бронирования
	now := uc.timeProvider.Now()
	endTime := now.Add(uc.lifetime)

	booking, err := uc.BookingRepo.Create(ctx, &domain.Booking{
		WalkID:            walk.ID,
		ClientID:          client.ID,
		Status:            domain.BookingStatusDraft,
		NumberOfPeople:    req.NumberOfPeople,
		EndTime:           &endTime,
		Comment:           req.Comment,
		HasChildren:       req.HasChildren,
		AgreementAccepted: req.AgreementAccepted,
		PromoCode:         req.PromoCode,
	})
	if err != nil {
		uc.Logger.Error("CreateBooking: failed to create booking: %v", err)
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}
	state.booking = booking

	// 8. Выставляем счёт во внешней платёжной системе
	invoice, err := uc.Gateway.OpenInvoice(ctx, paymentgateway.InvoiceRequest{
		Amount:      price.TotalCost,
		Description: fmt.Sprintf("%s, %s, мест: %d", route.ServiceName, walk.StartTime.Format(domain.DateTimeFormat), req.NumberOfPeople),
		PayerName:   req.Name,
		PayerPhone:  req.Phone,
		PayerEmail:  req.Email,
		BookingID:   booking.ID,
	})
	if err != nil {
		uc.Logger.Error("CreateBooking: failed to open invoice for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	// 9. Сохраняем счёт и переводим бронирование в ожидание оплаты
	var payment *domain.Payment
	err = uc.TxManager.Do(ctx, func(txCtx context.Context) error {
		created, err := uc.PaymentRepo.Create(txCtx, &domain.Payment{
			Status:            domain.PaymentStatusPending,
			Amount:            req.NumberOfPeople,
			PriceForOne:       price.PriceForOne,
			TotalCost:         price.TotalCost,
			DiscountType:      price.Type,
			DiscountStatus:    price.Status,
			LatestPaymentTime: endTime,
			InvoiceID:         invoice.ID,
			InvoiceLink:       invoice.Link,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create payment: %v", ErrInternal, err)
		}

		opened, err := uc.BookingRepo.OpenPayment(txCtx, booking.ID, created.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to link payment: %v", ErrInternal, err)
		}
		if !opened {
			return fmt.Errorf("%w: booking id=%d left DRAFT before payment was linked", ErrInternal, booking.ID)
		}

		payment = created
		return nil
	})
	if err != nil {
		uc.Logger.Error("CreateBooking: booking id=%d: %v (invoice id=%s stays unpaid)", booking.ID, err, invoice.ID)
		return nil, err
	}

	booking.PaymentID = ptr.Ptr(payment.ID)
	booking.Status = domain.BookingStatusWaitingForPayment

	uc.Logger.Info("CreateBooking: successfully created booking id=%d, payment id=%d, total=%s, discount=%s/%s",
		booking.ID, payment.ID, payment.TotalCost.StringFixed(domain.MoneyPlaces), price.Type, price.Status)

	uc.Metrics.IncBookingEvent(string(queue.EventBookingCreated))
	if err := uc.Publisher.Publish(ctx, queue.Event{
		Type:           queue.EventBookingCreated,
		BookingID:      booking.ID,
		WalkID:         booking.WalkID,
		NumberOfPeople: booking.NumberOfPeople,
		Status:         string(booking.Status),
		OccurredAt:     now,
	}); err != nil {
		uc.Logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", booking.ID, err)
	}

	return &Response{
		ID:             booking.ID,
		WalkID:         booking.WalkID,
		ClientID:       booking.ClientID,
		Status:         string(booking.Status),
		NumberOfPeople: booking.NumberOfPeople,
		EndTime:        endTime,
		PaymentID:      payment.ID,
		PriceForOne:    payment.PriceForOne,
		TotalCost:      payment.TotalCost,
		DiscountType:   string(payment.DiscountType),
		DiscountStatus: string(payment.DiscountStatus),
		InvoiceLink:    payment.InvoiceLink,
		CreatedAt:      booking.CreatedAt,
	}, nil
}

// compensate откатывает выполненные шаги в обратном порядке
// Выполняется без отмены контекста запроса, чтобы откат не прервался вместе с клиентом
func (uc *UseCase) compensate(ctx context.Context, state *saga) {
	ctx = context.WithoutCancel(ctx)

	release := state.reserved
	if state.booking != nil {
		rejected, err := uc.BookingRepo.TransitionStatus(ctx, state.booking.ID,
			[]domain.BookingStatus{domain.BookingStatusDraft}, domain.BookingStatusRejected, ptr.Ptr(creationFailedReason))
		if err != nil {
			uc.Logger.Error("CreateBooking: compensation: failed to reject booking id=%d: %v", state.booking.ID, err)
		}
		// Места освобождает тот, кто вывел бронирование из DRAFT
		release = release && rejected
		if rejected {
			uc.Logger.Warn("CreateBooking: compensation: booking id=%d rejected", state.booking.ID)
		}
	}

	if release {
		if _, err := uc.Capacity.Release(ctx, state.walkID, state.places); err != nil {
			uc.Logger.Error("CreateBooking: compensation: failed to release %d places on walk id=%d: %v",
				state.places, state.walkID, err)
		} else {
			uc.Logger.Warn("CreateBooking: compensation: released %d places on walk id=%d", state.places, state.walkID)
		}
	}

	if state.discount != nil {
		if err := uc.Discounts.Restore(ctx, state.discount); err != nil {
			uc.Logger.Error("CreateBooking: compensation: failed to restore voucher: %v", err)
		}
	}
}

func (uc *UseCase) mapCapacityError(walkID int64, err error) error {
	switch {
	case errors.Is(err, capacity.ErrCapacityExceeded):
		uc.Logger.Warn("CreateBooking: walk id=%d: %v", walkID, err)
		return ErrCapacityExceeded
	case errors.Is(err, capacity.ErrWalkNotOpen):
		uc.Logger.Warn("CreateBooking: walk id=%d closed before reservation", walkID)
		return ErrWalkNotOpen
	case errors.Is(err, capacity.ErrWalkNotFound):
		return ErrWalkNotFound
	case errors.Is(err, capacity.ErrConcurrentUpdate):
		uc.Logger.Warn("CreateBooking: walk id=%d is busy: %v", walkID, err)
		return ErrWalkBusy
	default:
		uc.Logger.Error("CreateBooking: failed to reserve places on walk id=%d: %v", walkID, err)
		return fmt.Errorf("%w: failed to reserve places: %w", ErrInternal, err)
	}
}
