package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
	bookingRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/payment"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

// PaymentFailedReason причина отмены при неуспешной оплате счёта
const PaymentFailedReason = "payment failed"

// Service жизненный цикл бронирования после создания
// Каждый переход выполняется условным обновлением в транзакции, повторный вызов ничего не меняет
type Service struct {
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	capacity     CapacityService
	publisher    EventPublisher
	metrics      MetricsCollector
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	capacity CapacityService,
	publisher EventPublisher,
	metrics MetricsCollector,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		capacity:     capacity,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (используется в тестах)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// transition описание перехода бронирования
// Исходные статусы берутся из графа переходов, only дополнительно их сужает
type transition struct {
	op     string
	only   []domain.BookingStatus
	to     domain.BookingStatus
	reason *string
	// guard дополнительная проверка на прочитанной в транзакции строке
	guard func(b *domain.Booking) bool
	// payment переходы счёта по его текущему статусу
	payment map[domain.PaymentStatus]domain.PaymentStatus
	release bool
	event   queue.EventType
}

func (t transition) sources() []domain.BookingStatus {
	sources := domain.SourcesFor(t.to)
	if t.only == nil {
		return sources
	}

	var narrowed []domain.BookingStatus
	for _, st := range sources {
		if st.In(t.only) {
			narrowed = append(narrowed, st)
		}
	}
	return narrowed
}

// Expire переводит неоплаченное бронирование с истёкшим дедлайном в EXPIRED и возвращает места
// Возвращает true, если переход выполнен этим вызовом
func (s *Service) Expire(ctx context.Context, bookingID int64) (bool, error) {
	now := s.timeProvider.Now()
	_, changed, err := s.apply(ctx, bookingID, transition{
		op: "Expire",
		to: domain.BookingStatusExpired,
		guard: func(b *domain.Booking) bool {
			return b.IsPaymentOverdue(now)
		},
		payment: map[domain.PaymentStatus]domain.PaymentStatus{
			domain.PaymentStatusPending: domain.PaymentStatusExpired,
		},
		release: true,
		event:   queue.EventBookingExpired,
	})
	return changed, err
}

// ConfirmPayment фиксирует успешную оплату счёта
func (s *Service) ConfirmPayment(ctx context.Context, bookingID int64) (bool, error) {
	_, changed, err := s.apply(ctx, bookingID, transition{
		op: "ConfirmPayment",
		to: domain.BookingStatusPaid,
		payment: map[domain.PaymentStatus]domain.PaymentStatus{
			domain.PaymentStatusPending: domain.PaymentStatusPaid,
		},
		event: queue.EventBookingPaid,
	})
	return changed, err
}

// FailPayment отменяет бронирование, счёт которого не был оплачен, и возвращает места
func (s *Service) FailPayment(ctx context.Context, bookingID int64) (bool, error) {
	_, changed, err := s.apply(ctx, bookingID, transition{
		op:     "FailPayment",
		only:   []domain.BookingStatus{domain.BookingStatusWaitingForPayment},
		to:     domain.BookingStatusCanceled,
		reason: ptr.Ptr(PaymentFailedReason),
		payment: map[domain.PaymentStatus]domain.PaymentStatus{
			domain.PaymentStatusPending: domain.PaymentStatusCanceled,
		},
		release: true,
		event:   queue.EventBookingCanceled,
	})
	return changed, err
}

// Complete завершает оплаченное бронирование после окончания прогулки
func (s *Service) Complete(ctx context.Context, bookingID int64) (bool, error) {
	_, changed, err := s.apply(ctx, bookingID, transition{
		op:    "Complete",
		to:    domain.BookingStatusCompleted,
		event: queue.EventBookingCompleted,
	})
	return changed, err
}

// Cancel административная отмена или отклонение бронирования
// Оплаченный счёт помечается REFUNDED, неоплаченный CANCELED
func (s *Service) Cancel(ctx context.Context, bookingID int64, req models.CancelBookingRequest) (*models.BookingResponse, error) {
	t := transition{
		op: "Cancel",
		to: domain.BookingStatusCanceled,
		payment: map[domain.PaymentStatus]domain.PaymentStatus{
			domain.PaymentStatusPending: domain.PaymentStatusCanceled,
			domain.PaymentStatusPaid:    domain.PaymentStatusRefunded,
		},
		release: true,
		event:   queue.EventBookingCanceled,
	}
	if req.Reject {
		t.to = domain.BookingStatusRejected
		t.event = queue.EventBookingRejected
	}
	if req.CancellationReason != "" {
		t.reason = ptr.Ptr(req.CancellationReason)
	}

	booking, changed, err := s.apply(ctx, bookingID, t)
	if err != nil {
		return nil, err
	}
	if !changed {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled from status %s", bookingID, booking.Status)
		return nil, fmt.Errorf("%w: current status %s", ErrCannotCancel, booking.Status)
	}

	return s.withPayment(ctx, "Cancel", booking)
}

// GetByID возвращает бронирование вместе со счётом
func (s *Service) GetByID(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: failed to get booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return s.withPayment(ctx, "GetByID", booking)
}

// GetByWalkID возвращает все бронирования прогулки
func (s *Service) GetByWalkID(ctx context.Context, walkID int64) (*models.BookingListResponse, error) {
	bookings, err := s.bookingRepo.GetByWalkID(ctx, walkID)
	if err != nil {
		s.logger.Error("GetByWalkID: failed to get bookings for walk id=%d: %v", walkID, err)
		return nil, fmt.Errorf("%w: GetByWalkID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

func (s *Service) withPayment(ctx context.Context, op string, booking *domain.Booking) (*models.BookingResponse, error) {
	if booking.PaymentID == nil {
		return models.FromDomainBooking(booking, nil), nil
	}

	payment, err := s.paymentRepo.GetByID(ctx, *booking.PaymentID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Warn("%s: payment id=%d of booking id=%d not found", op, *booking.PaymentID, booking.ID)
			return models.FromDomainBooking(booking, nil), nil
		}
		s.logger.Error("%s: failed to get payment id=%d: %v", op, *booking.PaymentID, err)
		return nil, fmt.Errorf("%w: %s - get payment: %v", ErrInternal, op, err)
	}

	return models.FromDomainBooking(booking, payment), nil
}

// apply выполняет переход в транзакции
// Возвращает бронирование в состоянии после вызова и признак того, что переход выполнен
func (s *Service) apply(ctx context.Context, bookingID int64, t transition) (*domain.Booking, bool, error) {
	var (
		booking *domain.Booking
		changed bool
		from    = t.sources()
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		changed = false

		var err error
		booking, err = s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: %s - get booking: %v", ErrInternal, t.op, err)
		}

		if !booking.Status.In(from) {
			return nil
		}
		if t.guard != nil && !t.guard(booking) {
			return nil
		}

		holds := booking.Status.HoldsCapacity()
		ok, err := s.bookingRepo.TransitionStatus(ctx, bookingID, from, t.to, t.reason)
		if err != nil {
			return fmt.Errorf("%w: %s - update booking: %v", ErrInternal, t.op, err)
		}
		if !ok {
			return nil
		}

		if err := s.transitionPayment(ctx, booking, t); err != nil {
			return err
		}

		if t.release && holds {
			if _, err := s.capacity.Release(ctx, booking.WalkID, booking.NumberOfPeople); err != nil {
				return fmt.Errorf("%w: %s - release places: %w", ErrInternal, t.op, err)
			}
		}

		if err := booking.TransitionTo(t.to); err != nil {
			return fmt.Errorf("%w: %s - %v", ErrInternal, t.op, err)
		}
		if t.reason != nil {
			booking.CancellationReason = t.reason
		}
		changed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", t.op, bookingID)
			return nil, false, err
		}
		s.logger.Error("%s: booking id=%d: %v", t.op, bookingID, err)
		return nil, false, err
	}

	if !changed {
		if booking.Status.IsTerminal() {
			s.logger.Info("%s: booking id=%d already final in status %s", t.op, bookingID, booking.Status)
		} else {
			s.logger.Info("%s: booking id=%d in status %s, nothing to do", t.op, bookingID, booking.Status)
		}
		return booking, false, nil
	}

	s.logger.Info("%s: booking id=%d moved to %s", t.op, bookingID, t.to)
	s.metrics.IncBookingEvent(string(t.event))
	s.publish(ctx, t, booking)

	return booking, true, nil
}

func (s *Service) transitionPayment(ctx context.Context, booking *domain.Booking, t transition) error {
	if booking.PaymentID == nil || len(t.payment) == 0 {
		return nil
	}

	payment, err := s.paymentRepo.GetByID(ctx, *booking.PaymentID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Warn("%s: payment id=%d of booking id=%d not found", t.op, *booking.PaymentID, booking.ID)
			return nil
		}
		return fmt.Errorf("%w: %s - get payment: %v", ErrInternal, t.op, err)
	}

	if payment.Status.IsTerminal() {
		return nil
	}
	next, ok := t.payment[payment.Status]
	if !ok {
		return nil
	}

	if _, err := s.paymentRepo.TransitionStatus(ctx, payment.ID, []domain.PaymentStatus{payment.Status}, next); err != nil {
		return fmt.Errorf("%w: %s - update payment: %v", ErrInternal, t.op, err)
	}
	return nil
}

// publish отправляет событие после фиксации транзакции
// Ошибка публикации не откатывает переход
func (s *Service) publish(ctx context.Context, t transition, booking *domain.Booking) {
	event := queue.Event{
		Type:           t.event,
		BookingID:      booking.ID,
		WalkID:         booking.WalkID,
		NumberOfPeople: booking.NumberOfPeople,
		Status:         string(t.to),
		OccurredAt:     s.timeProvider.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("%s: failed to publish %s for booking id=%d: %v", t.op, t.event, booking.ID, err)
	}
}
