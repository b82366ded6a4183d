package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openWalk(t *testing.T, maxPlaces int) *Walk {
	t.Helper()
	w, err := NewWalk(1, maxPlaces, decimal.RequireFromString("100.00"), time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), 90)
	require.NoError(t, err)
	require.NoError(t, w.TransitionTo(WalkStatusBookingInProgress))
	return w
}

func TestNewWalk(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	w, err := NewWalk(7, 12, decimal.RequireFromString("1500"), start, 60)
	require.NoError(t, err)
	assert.Equal(t, WalkStatusDraft, w.Status)
	assert.Equal(t, 12, w.AvailablePlaces)
	assert.Equal(t, 0, w.ReservedPlaces)
	assert.Equal(t, start.Add(time.Hour), w.EndTime)

	_, err = NewWalk(7, 0, decimal.Zero, start, 60)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = NewWalk(7, 5, decimal.NewFromInt(-1), start, 60)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestWalk_ReserveThenOverflow(t *testing.T) {
	w := openWalk(t, 10)

	require.NoError(t, w.Reserve(3))
	assert.Equal(t, 7, w.AvailablePlaces)
	assert.Equal(t, 3, w.ReservedPlaces)

	err := w.Reserve(8)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 7, w.AvailablePlaces)
	assert.Equal(t, 3, w.ReservedPlaces)
	assert.NoError(t, w.CheckInvariant())
}

func TestWalk_ReserveRejectsClosedWalkAndBadCount(t *testing.T) {
	w := openWalk(t, 10)
	assert.ErrorIs(t, w.Reserve(0), ErrInvalidPlaces)
	assert.ErrorIs(t, w.Reserve(-2), ErrInvalidPlaces)

	require.NoError(t, w.TransitionTo(WalkStatusBookingPaused))
	assert.ErrorIs(t, w.Reserve(1), ErrWalkNotOpen)
	assert.Equal(t, 10, w.AvailablePlaces)
}

func TestWalk_Release(t *testing.T) {
	w := openWalk(t, 5)
	require.NoError(t, w.Reserve(4))

	require.NoError(t, w.Release(3))
	assert.Equal(t, 1, w.ReservedPlaces)
	assert.Equal(t, 4, w.AvailablePlaces)

	err := w.Release(2)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, 1, w.ReservedPlaces)
}

func TestWalk_ReleaseAllowedOnClosedWalk(t *testing.T) {
	w := openWalk(t, 5)
	require.NoError(t, w.Reserve(2))
	require.NoError(t, w.TransitionTo(WalkStatusBookingFinished))

	require.NoError(t, w.Release(2))
	assert.Equal(t, 5, w.AvailablePlaces)
}

func TestWalk_Resize(t *testing.T) {
	w := openWalk(t, 10)
	require.NoError(t, w.Reserve(6))

	require.NoError(t, w.Resize(6))
	assert.Equal(t, 0, w.AvailablePlaces)

	require.NoError(t, w.Resize(20))
	assert.Equal(t, 14, w.AvailablePlaces)
	assert.Equal(t, 6, w.ReservedPlaces)

	assert.ErrorIs(t, w.Resize(5), ErrInvalidCapacity)
	assert.ErrorIs(t, w.Resize(0), ErrInvalidCapacity)
	assert.Equal(t, 20, w.MaxPlaces)
}

func TestWalk_CorruptedCountersDetected(t *testing.T) {
	w := openWalk(t, 10)
	w.AvailablePlaces = 9

	assert.ErrorIs(t, w.Reserve(1), ErrInvariantViolation)
	assert.ErrorIs(t, w.Release(1), ErrInvariantViolation)
}

func TestWalk_Transitions(t *testing.T) {
	tests := []struct {
		name string
		from WalkStatus
		to   WalkStatus
		ok   bool
	}{
		{"draft to open", WalkStatusDraft, WalkStatusBookingInProgress, true},
		{"draft to paused", WalkStatusDraft, WalkStatusBookingPaused, false},
		{"open to paused", WalkStatusBookingInProgress, WalkStatusBookingPaused, true},
		{"paused to open", WalkStatusBookingPaused, WalkStatusBookingInProgress, true},
		{"open to booking finished", WalkStatusBookingInProgress, WalkStatusBookingFinished, true},
		{"booking finished to finished", WalkStatusBookingFinished, WalkStatusFinished, true},
		{"booking finished to open", WalkStatusBookingFinished, WalkStatusBookingInProgress, false},
		{"open to canceled", WalkStatusBookingInProgress, WalkStatusCanceled, true},
		{"draft to deleted", WalkStatusDraft, WalkStatusDeleted, true},
		{"finished is terminal", WalkStatusFinished, WalkStatusCanceled, false},
		{"canceled is terminal", WalkStatusCanceled, WalkStatusDeleted, false},
		{"unknown status", WalkStatusDraft, WalkStatus("ARCHIVED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Walk{Status: tt.from}
			err := w.TransitionTo(tt.to)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, w.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, w.Status)
			}
		})
	}
}
