package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to ReservationStatus }{
		{StatusNew, StatusPendingReview},
		{StatusPendingReview, StatusApproved},
		{StatusPendingReview, StatusAdjusted},
		{StatusPendingReview, StatusRejected},
		{StatusApproved, StatusAwaitingPayment},
		{StatusAdjusted, StatusAwaitingPayment},
		{StatusAwaitingPayment, StatusConfirmed},
		{StatusAwaitingPayment, StatusCancelled},
		{StatusConfirmed, StatusAwaitingBalance},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusAwaitingBalance, StatusConfirmed},
		{StatusAwaitingBalance, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	forbidden := []struct{ from, to ReservationStatus }{
		{StatusNew, StatusCompleted},
		{StatusNew, StatusConfirmed},
		{StatusPendingReview, StatusConfirmed},
		{StatusAwaitingPayment, StatusCompleted},
		{StatusRejected, StatusApproved},
		{StatusCancelled, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
		{StatusConfirmed, StatusAwaitingPayment},
	}
	for _, tc := range forbidden {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be forbidden", tc.from, tc.to)
	}
}

func TestCheckTransitionError(t *testing.T) {
	err := CheckTransition(StatusNew, StatusCompleted)
	assert.Error(t, err)

	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, StatusNew, conflict.From)
	assert.Equal(t, StatusCompleted, conflict.To)

	assert.NoError(t, CheckTransition(StatusConfirmed, StatusCompleted))
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []ReservationStatus{StatusRejected, StatusCompleted, StatusCancelled} {
		assert.True(t, IsTerminal(s), "%s should be terminal", s)
	}
	for _, s := range []ReservationStatus{StatusNew, StatusPendingReview, StatusAwaitingPayment, StatusConfirmed, StatusAwaitingBalance} {
		assert.False(t, IsTerminal(s), "%s should not be terminal", s)
	}
}

func TestFullyPaid(t *testing.T) {
	now := time.Now()

	t.Run("No deposit", func(t *testing.T) {
		r := &Reservation{BalanceAmount: 0}
		assert.False(t, r.FullyPaid())
	})

	t.Run("Deposit paid, no balance due", func(t *testing.T) {
		r := &Reservation{DepositPaidAt: &now, BalanceAmount: 0}
		assert.True(t, r.FullyPaid())
	})

	t.Run("Deposit paid, balance outstanding", func(t *testing.T) {
		r := &Reservation{DepositPaidAt: &now, BalanceAmount: 245}
		assert.False(t, r.FullyPaid())
	})

	t.Run("Everything paid", func(t *testing.T) {
		r := &Reservation{DepositPaidAt: &now, BalanceAmount: 245, BalancePaidAt: &now}
		assert.True(t, r.FullyPaid())
	})
}
