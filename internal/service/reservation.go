package service

import (
	"context"
	"time"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/logger"
	"packbooker-backend/internal/pricing"
	"packbooker-backend/internal/repository"
	"packbooker-backend/internal/security"
)

type reservationService struct {
	reservations repository.ReservationRepository
	orders       repository.OrderRepository
	emailSvc     EmailService
	depositRate  float64
	now          func() time.Time
}

func NewReservationService(
	reservations repository.ReservationRepository,
	orders repository.OrderRepository,
	emailSvc EmailService,
	depositRate float64,
) ReservationService {
	if depositRate <= 0 {
		depositRate = pricing.DefaultDepositRate
	}
	return &reservationService{
		reservations: reservations,
		orders:       orders,
		emailSvc:     emailSvc,
		depositRate:  depositRate,
		now:          time.Now,
	}
}

func (s *reservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.reservations.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	r.FinalItems = items
	return r, nil
}

func (s *reservationService) List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return s.reservations.List(ctx, status, page, pageSize)
}

func (s *reservationService) GetPublicStatus(ctx context.Context, id, token string) (*ReservationSummary, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := security.Verify(token, r.PublicTokenHash, r.PublicTokenExpiresAt, s.now()); err != nil {
		return nil, err
	}

	return &ReservationSummary{
		ID:            r.ID,
		PackKey:       r.PackKey,
		CustomerName:  r.CustomerName,
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		Status:        r.Status,
		PriceTotal:    r.PriceTotal,
		DepositAmount: r.DepositAmount,
		DepositPaid:   r.DepositPaidAt != nil,
		BalanceAmount: r.BalanceAmount,
		BalanceDueAt:  r.BalanceDueAt,
		BalancePaid:   r.BalancePaidAt != nil,
		FinalItems:    r.FinalItems,
	}, nil
}

// recompute refreshes every derived price field from the item list. It
// mutates only the in-memory copy; callers persist afterwards, so a
// failure here leaves the stored state untouched.
func (s *reservationService) recompute(r *domain.Reservation, items []domain.FinalItem) error {
	base, err := pricing.BasePackPrice(r.PackKey, r.StartAt, r.EndAt)
	if err != nil {
		return err
	}
	extras, err := pricing.ExtrasTotal(items)
	if err != nil {
		return err
	}

	r.BasePackPrice = base
	r.ExtrasTotal = extras
	r.PriceTotal = pricing.PriceTotal(base, extras)
	r.DepositAmount = pricing.DepositAmountAt(r.PriceTotal, s.depositRate)
	if r.DepositPaidAt != nil {
		r.BalanceAmount = pricing.BalanceAmount(r.PriceTotal, r.DepositPaidAmount)
	} else {
		r.BalanceAmount = pricing.BalanceAmount(r.PriceTotal, r.DepositAmount)
	}
	return nil
}

func (s *reservationService) Adjust(ctx context.Context, id string, items []domain.FinalItem) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminal(r.Status) {
		return nil, &domain.ConflictError{Reason: "reservation is closed", From: r.Status}
	}
	if r.BalancePaidAt != nil {
		return nil, &domain.ConflictError{Reason: "reservation is fully paid", From: r.Status}
	}

	// Recomputation happens before any write; a pricing failure aborts
	// the whole adjustment.
	if err := s.recompute(r, items); err != nil {
		return nil, err
	}

	if err := s.reservations.ReplaceItems(ctx, id, items); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	r.FinalItems = items
	return r, nil
}

func (s *reservationService) Cancel(ctx context.Context, id, reason string) (*domain.Reservation, *pricing.RefundEstimate, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.cancel(ctx, r, reason)
}

func (s *reservationService) CancelPublic(ctx context.Context, id, token, reason string) (*domain.Reservation, *pricing.RefundEstimate, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := security.Verify(token, r.PublicTokenHash, r.PublicTokenExpiresAt, s.now()); err != nil {
		return nil, nil, err
	}
	return s.cancel(ctx, r, reason)
}

func (s *reservationService) cancel(ctx context.Context, r *domain.Reservation, reason string) (*domain.Reservation, *pricing.RefundEstimate, error) {
	if err := domain.CheckTransition(r.Status, domain.StatusCancelled); err != nil {
		return nil, nil, err
	}

	now := s.now()
	estimate := pricing.Refund(r.StartAt, now)

	paid := r.DepositPaidAmount
	if r.BalancePaidAt != nil {
		paid += r.BalanceAmount
	}
	refund := pricing.Round2(paid * float64(estimate.RefundPercentage) / 100)

	r.Status = domain.StatusCancelled
	r.CancellationRequestedAt = &now
	r.CancellationReason = reason
	r.RefundPolicyApplied = estimate.Policy
	r.RefundEstimateAmount = &refund

	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, nil, err
	}

	s.settleOrders(ctx, r.ID, estimate.RefundPercentage)

	if s.emailSvc != nil {
		if err := s.emailSvc.SendCancellationNotice(ctx, r, estimate); err != nil {
			logger.Error("failed to send cancellation notice", "reservation_id", r.ID, "error", err)
		}
	}

	return r, &estimate, nil
}

// settleOrders closes out the reservation's orders after cancellation:
// open checkout sessions are cancelled and, when the policy grants a
// refund, captured payments are marked for it. The reservation itself
// is already cancelled, so failures here are logged for manual
// reconciliation instead of unwinding the state change.
func (s *reservationService) settleOrders(ctx context.Context, reservationID string, refundPercentage int) {
	if s.orders == nil {
		return
	}
	orders, err := s.orders.ListByReservation(ctx, reservationID)
	if err != nil {
		logger.Error("failed to list orders for cancelled reservation", "reservation_id", reservationID, "error", err)
		return
	}
	for i := range orders {
		o := &orders[i]
		var next domain.OrderStatus
		switch {
		case o.Status == domain.OrderStatusPending:
			next = domain.OrderStatusCancelled
		case o.Status == domain.OrderStatusPaid && refundPercentage > 0:
			next = domain.OrderStatusRefunded
		default:
			continue
		}
		if err := s.orders.UpdateStatus(ctx, o.ID, next); err != nil {
			logger.Error("failed to settle order on cancellation", "order_id", o.ID, "status", next, "error", err)
		}
	}
}

func (s *reservationService) Complete(ctx context.Context, id string) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(r.Status, domain.StatusCompleted); err != nil {
		return nil, err
	}
	if s.now().Before(r.EndAt) {
		return nil, &domain.ConflictError{Reason: "event has not ended yet", From: r.Status}
	}
	if !r.FullyPaid() {
		return nil, &domain.ConflictError{Reason: "outstanding payment on reservation", From: r.Status}
	}

	r.Status = domain.StatusCompleted
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
