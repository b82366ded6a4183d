package scheduler

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// Имена задач в логах и метриках
const (
	JobExpiry      = "expiry_sweep"
	JobPaymentPoll = "payment_poll"
	JobCompletion  = "completion"
)

// Report итог одного прогона задачи
type Report struct {
	// Processed сколько бронирований рассмотрено
	Processed int
	// Transitioned сколько бронирований сменили статус в этом прогоне
	Transitioned int
	// Failed сколько бронирований не удалось обработать, они будут повторены в следующем прогоне
	Failed int
}

// SweepExpired переводит в EXPIRED неоплаченные бронирования с истёкшим дедлайном
func (s *Scheduler) SweepExpired(ctx context.Context) (Report, error) {
	var report Report

	bookings, err := s.bookingRepo.GetDueForExpiry(ctx, domain.PendingPaymentStatuses, s.timeProvider.Now())
	if err != nil {
		return report, fmt.Errorf("%w: SweepExpired - load bookings: %v", ErrLoad, err)
	}

	for _, booking := range bookings {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++

		changed, err := s.bookings.Expire(ctx, booking.ID)
		if err != nil {
			s.itemFailed(JobExpiry, &report, booking.ID, err)
			continue
		}
		if changed {
			report.Transitioned++
		}
	}

	return report, nil
}

// PollPayments запрашивает статусы счетов бронирований, ожидающих оплаты
// Ошибки платёжной системы не меняют бронирование, оно будет проверено в следующем прогоне
func (s *Scheduler) PollPayments(ctx context.Context) (Report, error) {
	var report Report

	bookings, err := s.bookingRepo.GetByStatus(ctx, domain.BookingStatusWaitingForPayment)
	if err != nil {
		return report, fmt.Errorf("%w: PollPayments - load bookings: %v", ErrLoad, err)
	}
	if len(bookings) == 0 {
		return report, nil
	}

	ids := make([]int64, 0, len(bookings))
	for _, booking := range bookings {
		if booking.PaymentID != nil {
			ids = append(ids, *booking.PaymentID)
		}
	}

	payments, err := s.paymentRepo.GetByIDs(ctx, ids)
	if err != nil {
		return report, fmt.Errorf("%w: PollPayments - load payments: %v", ErrLoad, err)
	}

	for _, booking := range bookings {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++

		if booking.PaymentID == nil {
			s.logger.Warn("PollPayments: booking id=%d has no payment", booking.ID)
			continue
		}
		payment, ok := payments[*booking.PaymentID]
		if !ok || payment.InvoiceID == "" {
			s.logger.Warn("PollPayments: booking id=%d has no invoice", booking.ID)
			continue
		}

		status, err := s.gateway.GetInvoiceStatus(ctx, payment.InvoiceID)
		if err != nil {
			s.itemFailed(JobPaymentPoll, &report, booking.ID, err)
			continue
		}

		var changed bool
		switch status {
		case domain.InvoiceStatusPaid:
			changed, err = s.bookings.ConfirmPayment(ctx, booking.ID)
		case domain.InvoiceStatusFailed:
			changed, err = s.bookings.FailPayment(ctx, booking.ID)
		default:
			continue
		}
		if err != nil {
			s.itemFailed(JobPaymentPoll, &report, booking.ID, err)
			continue
		}
		if changed {
			report.Transitioned++
		}
	}

	return report, nil
}

// CompleteFinished завершает оплаченные бронирования прошедших прогулок
func (s *Scheduler) CompleteFinished(ctx context.Context) (Report, error) {
	var report Report

	bookings, err := s.bookingRepo.GetPaidWithFinishedWalk(ctx, s.timeProvider.Now())
	if err != nil {
		return report, fmt.Errorf("%w: CompleteFinished - load bookings: %v", ErrLoad, err)
	}

	for _, booking := range bookings {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++

		changed, err := s.bookings.Complete(ctx, booking.ID)
		if err != nil {
			s.itemFailed(JobCompletion, &report, booking.ID, err)
			continue
		}
		if changed {
			report.Transitioned++
		}
	}

	return report, nil
}

func (s *Scheduler) itemFailed(job string, report *Report, bookingID int64, err error) {
	report.Failed++
	s.metrics.IncSchedulerItemFailure(job)
	s.logger.Error("%s: booking id=%d: %v", job, bookingID, err)
}
