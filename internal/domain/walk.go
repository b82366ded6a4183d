package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// WalkStatus статус прогулки
type WalkStatus string

const (
	WalkStatusDraft             WalkStatus = "DRAFT"
	WalkStatusBookingInProgress WalkStatus = "BOOKING_IN_PROGRESS"
	WalkStatusBookingPaused     WalkStatus = "BOOKING_PAUSED"
	WalkStatusBookingFinished   WalkStatus = "BOOKING_FINISHED"
	WalkStatusFinished          WalkStatus = "FINISHED"
	WalkStatusCanceled          WalkStatus = "CANCELED"
	WalkStatusDeleted           WalkStatus = "DELETED"
)

// walkTransitions допустимые переходы статусов прогулки (кроме CANCELED/DELETED, разрешённых из любого нетерминального)
var walkTransitions = map[WalkStatus][]WalkStatus{
	WalkStatusDraft:             {WalkStatusBookingInProgress},
	WalkStatusBookingInProgress: {WalkStatusBookingPaused, WalkStatusBookingFinished},
	WalkStatusBookingPaused:     {WalkStatusBookingInProgress, WalkStatusBookingFinished},
	WalkStatusBookingFinished:   {WalkStatusFinished},
}

// IsTerminal возвращает true для статусов, из которых нет переходов
func (s WalkStatus) IsTerminal() bool {
	return s == WalkStatusFinished || s == WalkStatusCanceled || s == WalkStatusDeleted
}

// IsValid проверяет, что статус известен
func (s WalkStatus) IsValid() bool {
	switch s {
	case WalkStatusDraft, WalkStatusBookingInProgress, WalkStatusBookingPaused,
		WalkStatusBookingFinished, WalkStatusFinished, WalkStatusCanceled, WalkStatusDeleted:
		return true
	}
	return false
}

// Walk прогулка - слот с ограниченным количеством мест
// Инвариант: ReservedPlaces + AvailablePlaces == MaxPlaces, AvailablePlaces >= 0
type Walk struct {
	ID              int64
	RouteID         int64
	Status          WalkStatus
	MaxPlaces       int
	ReservedPlaces  int
	AvailablePlaces int
	PriceForOne     decimal.Decimal
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int

	// Version версия строки для оптимистичной блокировки
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWalk создает прогулку в статусе DRAFT со всеми местами свободными
func NewWalk(routeID int64, maxPlaces int, price decimal.Decimal, start time.Time, durationMinutes int) (*Walk, error) {
	if maxPlaces < 1 {
		return nil, fmt.Errorf("%w: maxPlaces must be at least 1", ErrInvalidCapacity)
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidCapacity)
	}

	return &Walk{
		RouteID:         routeID,
		Status:          WalkStatusDraft,
		MaxPlaces:       maxPlaces,
		ReservedPlaces:  0,
		AvailablePlaces: maxPlaces,
		PriceForOne:     price,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes: durationMinutes,
	}, nil
}

// IsOpenForBooking возвращает true, если прогулка принимает бронирования
func (w *Walk) IsOpenForBooking() bool {
	return w.Status == WalkStatusBookingInProgress
}

// CheckInvariant проверяет согласованность счётчиков мест
func (w *Walk) CheckInvariant() error {
	if w.ReservedPlaces < 0 || w.AvailablePlaces < 0 || w.ReservedPlaces+w.AvailablePlaces != w.MaxPlaces {
		return fmt.Errorf("%w: walk id=%d max=%d reserved=%d available=%d",
			ErrInvariantViolation, w.ID, w.MaxPlaces, w.ReservedPlaces, w.AvailablePlaces)
	}
	return nil
}

// Reserve резервирует count мест
// При ошибке состояние прогулки не меняется
func (w *Walk) Reserve(count int) error {
	if count <= 0 {
		return ErrInvalidPlaces
	}
	if !w.IsOpenForBooking() {
		return fmt.Errorf("%w: status=%s", ErrWalkNotOpen, w.Status)
	}
	if err := w.CheckInvariant(); err != nil {
		return err
	}
	if w.AvailablePlaces < count {
		return fmt.Errorf("%w: requested=%d available=%d", ErrCapacityExceeded, count, w.AvailablePlaces)
	}

	w.AvailablePlaces -= count
	w.ReservedPlaces += count
	return nil
}

// Release возвращает count мест
// Возврат большего количества, чем зарезервировано, - логическая ошибка вызывающего кода
func (w *Walk) Release(count int) error {
	if count <= 0 {
		return ErrInvalidPlaces
	}
	if err := w.CheckInvariant(); err != nil {
		return err
	}
	if w.ReservedPlaces < count {
		return fmt.Errorf("%w: release=%d reserved=%d walk id=%d", ErrInvariantViolation, count, w.ReservedPlaces, w.ID)
	}

	w.ReservedPlaces -= count
	w.AvailablePlaces += count
	return nil
}

// Resize меняет максимальное количество мест
// Нельзя уменьшить вместимость ниже уже зарезервированных мест
func (w *Walk) Resize(newMax int) error {
	if newMax < 1 {
		return fmt.Errorf("%w: maxPlaces must be at least 1", ErrInvalidCapacity)
	}
	if err := w.CheckInvariant(); err != nil {
		return err
	}
	if newMax < w.ReservedPlaces {
		return fmt.Errorf("%w: newMax=%d reserved=%d", ErrInvalidCapacity, newMax, w.ReservedPlaces)
	}

	w.MaxPlaces = newMax
	w.AvailablePlaces = newMax - w.ReservedPlaces
	return nil
}

// CanTransitionTo проверяет допустимость перехода статуса
func (w *Walk) CanTransitionTo(next WalkStatus) bool {
	if w.Status.IsTerminal() || !next.IsValid() || next == w.Status {
		return false
	}
	if next == WalkStatusCanceled || next == WalkStatusDeleted {
		return true
	}
	for _, allowed := range walkTransitions[w.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo переводит прогулку в новый статус
func (w *Walk) TransitionTo(next WalkStatus) error {
	if !w.CanTransitionTo(next) {
		return fmt.Errorf("%w: walk %s -> %s", ErrInvalidTransition, w.Status, next)
	}
	w.Status = next
	return nil
}

// HasEnded возвращает true, если прогулка закончилась к моменту now
func (w *Walk) HasEnded(now time.Time) bool {
	return !now.Before(w.EndTime)
}
