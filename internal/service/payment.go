package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/logger"
	"packbooker-backend/internal/pricing"
	"packbooker-backend/internal/repository"
	"packbooker-backend/internal/security"
)

type paymentService struct {
	reservations     repository.ReservationRepository
	orders           repository.OrderRepository
	products         repository.ProductRepository
	gateway          PaymentGateway
	emailSvc         EmailService
	baseURL          string
	currency         string
	balanceDueOffset time.Duration
	now              func() time.Time
}

func NewPaymentService(
	reservations repository.ReservationRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	gateway PaymentGateway,
	emailSvc EmailService,
	baseURL, currency string,
	balanceDueOffsetDays int,
) PaymentService {
	if balanceDueOffsetDays <= 0 {
		balanceDueOffsetDays = 1
	}
	return &paymentService{
		reservations:     reservations,
		orders:           orders,
		products:         products,
		gateway:          gateway,
		emailSvc:         emailSvc,
		baseURL:          baseURL,
		currency:         currency,
		balanceDueOffset: time.Duration(balanceDueOffsetDays) * 24 * time.Hour,
		now:              time.Now,
	}
}

func (s *paymentService) CreateCheckoutPublic(ctx context.Context, reservationID, token string) (*CheckoutSession, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := security.Verify(token, r.PublicTokenHash, r.PublicTokenExpiresAt, s.now()); err != nil {
		return nil, err
	}
	return s.createCheckout(ctx, r)
}

func (s *paymentService) CreateCheckout(ctx context.Context, reservationID string) (*CheckoutSession, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return s.createCheckout(ctx, r)
}

func (s *paymentService) createCheckout(ctx context.Context, r *domain.Reservation) (*CheckoutSession, error) {
	if s.gateway == nil {
		return nil, &domain.ServiceUnavailable{Service: "payment provider"}
	}

	switch r.Status {
	case domain.StatusAwaitingPayment:
		return s.depositCheckout(ctx, r)
	case domain.StatusAwaitingBalance:
		return s.balanceCheckout(ctx, r)
	default:
		return nil, &domain.ConflictError{Reason: "reservation is not payable", From: r.Status}
	}
}

// depositCheckout creates the primary session covering the full price
// total. The success redirect carries the reservation id and the
// deposit amount so the confirmation leg can chain the guarantee hold.
func (s *paymentService) depositCheckout(ctx context.Context, r *domain.Reservation) (*CheckoutSession, error) {
	if r.PriceTotal <= 0 {
		return nil, &domain.ConflictError{Reason: "nothing to pay on a zero-priced reservation", From: r.Status}
	}

	// Replay an already-issued session, page reloads must not stack
	// sessions.
	if r.DepositSessionID != nil {
		if existing, err := s.orders.GetBySessionID(ctx, *r.DepositSessionID); err == nil && existing.Status == domain.OrderStatusPending {
			return &CheckoutSession{SessionID: existing.ProviderSessionID, URL: existing.CheckoutURL}, nil
		}
	}

	lines, err := s.buildLines(ctx, r)
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	successURL := fmt.Sprintf("%s/checkout/confirm?rid=%s&order=%s&deposit=%.2f", s.baseURL, r.ID, orderID, r.DepositAmount)
	cancelURL := fmt.Sprintf("%s/checkout/%s", s.baseURL, r.ID)

	sess, err := s.gateway.CreateSession(ctx, SessionRequest{
		Reference:  orderID,
		Lines:      lines,
		Currency:   s.currency,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata:   map[string]any{"reservation_id": r.ID, "kind": string(domain.OrderKindFull)},
	})
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:                orderID,
		ReservationID:     &r.ID,
		ProviderSessionID: sess.ID,
		CheckoutURL:       sess.URL,
		Kind:              domain.OrderKindFull,
		Amount:            r.PriceTotal,
		Currency:          s.currency,
		Status:            domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	// The session id must be on the reservation before the customer is
	// redirected, otherwise a retried page load creates a second one.
	r.DepositSessionID = &sess.ID
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}

	logger.Info("deposit checkout session created", "reservation_id", r.ID, "session_id", sess.ID, "amount", r.PriceTotal)
	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

func (s *paymentService) balanceCheckout(ctx context.Context, r *domain.Reservation) (*CheckoutSession, error) {
	if r.BalanceAmount <= 0 {
		return nil, &domain.ConflictError{Reason: "no balance due", From: r.Status}
	}

	if r.BalanceSessionID != nil {
		if existing, err := s.orders.GetBySessionID(ctx, *r.BalanceSessionID); err == nil && existing.Status == domain.OrderStatusPending {
			return &CheckoutSession{SessionID: existing.ProviderSessionID, URL: existing.CheckoutURL}, nil
		}
	}

	orderID := uuid.NewString()
	successURL := fmt.Sprintf("%s/checkout/confirm?rid=%s&order=%s", s.baseURL, r.ID, orderID)
	cancelURL := fmt.Sprintf("%s/checkout/%s", s.baseURL, r.ID)

	sess, err := s.gateway.CreateSession(ctx, SessionRequest{
		Reference: orderID,
		Lines: []SessionLine{{
			Title:     fmt.Sprintf("Solde réservation pack %s", r.PackKey),
			Qty:       1,
			UnitPrice: r.BalanceAmount,
		}},
		Currency:   s.currency,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata:   map[string]any{"reservation_id": r.ID, "kind": string(domain.OrderKindBalance)},
	})
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:                orderID,
		ReservationID:     &r.ID,
		ProviderSessionID: sess.ID,
		CheckoutURL:       sess.URL,
		Kind:              domain.OrderKindBalance,
		Amount:            r.BalanceAmount,
		Currency:          s.currency,
		Status:            domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	r.BalanceSessionID = &sess.ID
	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}

	logger.Info("balance checkout session created", "reservation_id", r.ID, "session_id", sess.ID, "amount", r.BalanceAmount)
	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// buildLines itemizes the checkout: one line for the base pack, one per
// priced extra resolved through its catalog product. When the itemized
// sum does not reproduce price_total exactly, a single aggregate line
// is used instead so the customer is never over- or under-charged.
func (s *paymentService) buildLines(ctx context.Context, r *domain.Reservation) ([]SessionLine, error) {
	fallback := []SessionLine{{
		Title:     fmt.Sprintf("Réservation pack %s", r.PackKey),
		Qty:       1,
		UnitPrice: r.PriceTotal,
	}}

	items, err := s.reservations.ListItems(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return fallback, nil
	}

	lines := []SessionLine{{
		Title:     fmt.Sprintf("Pack %s", r.PackKey),
		Qty:       1,
		UnitPrice: r.BasePackPrice,
	}}
	sum := r.BasePackPrice

	for _, it := range items {
		if !it.IsExtra || it.UnitPrice == nil {
			continue
		}
		title := it.Label
		if it.ProductID != nil {
			product, err := s.products.GetByID(ctx, *it.ProductID)
			switch {
			case domain.IsNotFound(err):
				// Stale catalog reference, fall back to the aggregate line.
				return fallback, nil
			case err != nil:
				return nil, err
			default:
				title = product.Name
			}
		}
		lines = append(lines, SessionLine{Title: title, Qty: it.Qty, UnitPrice: *it.UnitPrice})
		sum += float64(it.Qty) * *it.UnitPrice
	}

	if pricing.Round2(sum) != r.PriceTotal {
		return fallback, nil
	}
	return lines, nil
}

// Confirm processes the provider's return leg. It is idempotent: a
// replayed confirmation for an already-paid order changes nothing.
func (s *paymentService) Confirm(ctx context.Context, sessionID, providerPaymentID string) (*ConfirmResult, error) {
	if s.gateway == nil {
		return nil, &domain.ServiceUnavailable{Service: "payment provider"}
	}

	order, err := s.orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.OrderStatusPaid {
		var r *domain.Reservation
		if order.ReservationID != nil {
			if r, err = s.reservations.GetByID(ctx, *order.ReservationID); err != nil {
				return nil, err
			}
		}
		return &ConfirmResult{Reservation: r, Kind: order.Kind}, nil
	}

	pay, err := s.gateway.PaymentStatus(ctx, providerPaymentID)
	if err != nil {
		return nil, err
	}
	if pay.Status != "approved" {
		return nil, &domain.ConflictError{Reason: fmt.Sprintf("payment not approved by provider: %s", pay.Status)}
	}

	switch order.Kind {
	case domain.OrderKindFull:
		return s.confirmDeposit(ctx, order, pay)
	case domain.OrderKindBalance:
		return s.confirmBalance(ctx, order, pay)
	case domain.OrderKindDeposit:
		// Guarantee hold leg: record the capture, no lifecycle change.
		if err := s.orders.MarkPaid(ctx, order.ID, pay.ID, s.now()); err != nil {
			return nil, err
		}
		return &ConfirmResult{Kind: order.Kind}, nil
	default:
		return nil, &domain.ConflictError{Reason: fmt.Sprintf("unknown order kind %q", order.Kind)}
	}
}

func (s *paymentService) confirmDeposit(ctx context.Context, order *domain.Order, pay *ProviderPayment) (*ConfirmResult, error) {
	if order.ReservationID == nil {
		return nil, &domain.ConflictError{Reason: "order is not linked to a reservation"}
	}
	r, err := s.reservations.GetByID(ctx, *order.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(r.Status, domain.StatusConfirmed); err != nil {
		return nil, err
	}

	now := s.now()
	r.DepositPaidAmount = r.DepositAmount
	r.DepositPaidAt = &now
	r.BalanceAmount = pricing.BalanceAmount(r.PriceTotal, r.DepositPaidAmount)
	dueAt := r.StartAt.Add(-s.balanceDueOffset)
	r.BalanceDueAt = &dueAt
	r.Status = domain.StatusConfirmed

	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	if err := s.orders.MarkPaid(ctx, order.ID, pay.ID, now); err != nil {
		return nil, err
	}

	if s.emailSvc != nil {
		if err := s.emailSvc.SendDepositReceipt(ctx, r); err != nil {
			logger.Error("failed to send deposit receipt", "reservation_id", r.ID, "error", err)
		}
	}

	result := &ConfirmResult{Reservation: r, Kind: order.Kind}

	// Chain the guarantee hold for the deposit share. Its failure does
	// not roll back the confirmation that already happened.
	if r.DepositAmount > 0 {
		url, err := s.createGuaranteeHold(ctx, r)
		if err != nil {
			logger.Warn("failed to create guarantee hold session", "reservation_id", r.ID, "error", err)
		} else {
			result.GuaranteeURL = url
		}
	}

	logger.Info("deposit confirmed", "reservation_id", r.ID, "order_id", order.ID, "balance_due_at", r.BalanceDueAt)
	return result, nil
}

func (s *paymentService) createGuaranteeHold(ctx context.Context, r *domain.Reservation) (string, error) {
	orderID := uuid.NewString()
	successURL := fmt.Sprintf("%s/checkout/confirm?rid=%s&order=%s", s.baseURL, r.ID, orderID)

	sess, err := s.gateway.CreateSession(ctx, SessionRequest{
		Reference: orderID,
		Lines: []SessionLine{{
			Title:     fmt.Sprintf("Acompte de garantie pack %s", r.PackKey),
			Qty:       1,
			UnitPrice: r.DepositAmount,
		}},
		Currency:   s.currency,
		SuccessURL: successURL,
		CancelURL:  fmt.Sprintf("%s/suivi", s.baseURL),
		Metadata:   map[string]any{"reservation_id": r.ID, "kind": string(domain.OrderKindDeposit)},
	})
	if err != nil {
		return "", err
	}

	order := &domain.Order{
		ID:                orderID,
		ReservationID:     &r.ID,
		ProviderSessionID: sess.ID,
		CheckoutURL:       sess.URL,
		Kind:              domain.OrderKindDeposit,
		Amount:            r.DepositAmount,
		Currency:          s.currency,
		Status:            domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (s *paymentService) confirmBalance(ctx context.Context, order *domain.Order, pay *ProviderPayment) (*ConfirmResult, error) {
	if order.ReservationID == nil {
		return nil, &domain.ConflictError{Reason: "order is not linked to a reservation"}
	}
	r, err := s.reservations.GetByID(ctx, *order.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(r.Status, domain.StatusConfirmed); err != nil {
		return nil, err
	}
	if r.DepositPaidAt == nil {
		return nil, &domain.ConflictError{Reason: "balance confirmed before deposit", From: r.Status}
	}

	now := s.now()
	r.BalancePaidAt = &now
	r.Status = domain.StatusConfirmed

	if err := s.reservations.Update(ctx, r); err != nil {
		return nil, err
	}
	if err := s.orders.MarkPaid(ctx, order.ID, pay.ID, now); err != nil {
		return nil, err
	}

	logger.Info("balance confirmed", "reservation_id", r.ID, "order_id", order.ID)
	return &ConfirmResult{Reservation: r, Kind: order.Kind}, nil
}
