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

type requestService struct {
	requests     repository.RequestRepository
	reservations repository.ReservationRepository
	tokens       security.TokenIssuer
	emailSvc     EmailService
	depositRate  float64
	now          func() time.Time
}

func NewRequestService(
	requests repository.RequestRepository,
	reservations repository.ReservationRepository,
	tokens security.TokenIssuer,
	emailSvc EmailService,
	depositRate float64,
) RequestService {
	if depositRate <= 0 {
		depositRate = pricing.DefaultDepositRate
	}
	return &requestService{
		requests:     requests,
		reservations: reservations,
		tokens:       tokens,
		emailSvc:     emailSvc,
		depositRate:  depositRate,
		now:          time.Now,
	}
}

func (s *requestService) Submit(ctx context.Context, in SubmitRequestInput) (*domain.ReservationRequest, error) {
	if !domain.ValidPackKey(in.PackKey) {
		return nil, &domain.ValidationError{Field: "pack_key", Reason: fmt.Sprintf("unknown pack %q", in.PackKey)}
	}
	if in.CustomerEmail == "" {
		return nil, &domain.ValidationError{Field: "customer_email", Reason: "required"}
	}
	if !in.EndAt.After(in.StartAt) {
		return nil, &domain.ValidationError{Field: "end_at", Reason: "event end must be after start"}
	}
	for _, it := range in.Items {
		if it.Qty < 0 {
			return nil, &domain.ValidationError{Field: "qty", Reason: fmt.Sprintf("negative quantity on %q", it.Label)}
		}
	}

	tok, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	req := &domain.ReservationRequest{
		ID:                   uuid.NewString(),
		PackKey:              in.PackKey,
		CustomerEmail:        in.CustomerEmail,
		CustomerName:         in.CustomerName,
		StartAt:              in.StartAt,
		EndAt:                in.EndAt,
		Address:              in.Address,
		Message:              in.Message,
		Status:               domain.StatusPendingReview,
		PublicTokenHash:      tok.Hash,
		PublicTokenExpiresAt: &tok.ExpiresAt,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	if len(in.Items) > 0 {
		items := withItemIDs(in.Items)
		if err := s.requests.ReplaceItems(ctx, req.ID, items); err != nil {
			return nil, err
		}
		req.RequestedItems = items
	}

	if s.emailSvc != nil {
		if err := s.emailSvc.SendRequestReceived(ctx, req, tok.Plaintext); err != nil {
			logger.Error("failed to send request receipt", "request_id", req.ID, "error", err)
		}
	}

	logger.Info("reservation request submitted", "request_id", req.ID, "pack", req.PackKey)
	return req, nil
}

func (s *requestService) Get(ctx context.Context, id string) (*domain.ReservationRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.requests.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	req.RequestedItems = items
	return req, nil
}

func (s *requestService) List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.ReservationRequest, int32, error) {
	return s.requests.List(ctx, status, page, pageSize)
}

func (s *requestService) Approve(ctx context.Context, requestID string) (*domain.Reservation, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(req.Status, domain.StatusApproved); err != nil {
		return nil, err
	}
	return s.materialize(ctx, req, domain.StatusApproved, req.RequestedItems)
}

func (s *requestService) Adjust(ctx context.Context, requestID string, items []domain.FinalItem) (*domain.Reservation, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(req.Status, domain.StatusAdjusted); err != nil {
		return nil, err
	}
	items = withItemIDs(items)
	if err := s.requests.ReplaceItems(ctx, requestID, items); err != nil {
		return nil, err
	}
	return s.materialize(ctx, req, domain.StatusAdjusted, items)
}

// materialize turns an approved or adjusted request into a Reservation
// sitting in AWAITING_PAYMENT, with a fresh public token emailed out as
// a deposit checkout invitation. All pricing is computed before any
// write, so a pricing failure aborts with the request untouched.
func (s *requestService) materialize(ctx context.Context, req *domain.ReservationRequest, decision domain.ReservationStatus, items []domain.FinalItem) (*domain.Reservation, error) {
	base, err := pricing.BasePackPrice(req.PackKey, req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	extras, err := pricing.ExtrasTotal(items)
	if err != nil {
		return nil, err
	}
	total := pricing.PriceTotal(base, extras)

	if err := domain.CheckTransition(decision, domain.StatusAwaitingPayment); err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, &domain.ConflictError{
			Reason: "cannot await payment on a zero-priced reservation",
			From:   decision,
			To:     domain.StatusAwaitingPayment,
		}
	}

	tok, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	deposit := pricing.DepositAmountAt(total, s.depositRate)
	r := &domain.Reservation{
		ID:                   uuid.NewString(),
		PackKey:              req.PackKey,
		CustomerEmail:        req.CustomerEmail,
		CustomerName:         req.CustomerName,
		StartAt:              req.StartAt,
		EndAt:                req.EndAt,
		Address:              req.Address,
		Status:               domain.StatusAwaitingPayment,
		BasePackPrice:        base,
		ExtrasTotal:          extras,
		PriceTotal:           total,
		DepositAmount:        deposit,
		BalanceAmount:        pricing.BalanceAmount(total, deposit),
		PublicTokenHash:      tok.Hash,
		PublicTokenExpiresAt: &tok.ExpiresAt,
		RequestID:            &req.ID,
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		return nil, err
	}
	items = withItemIDs(items)
	if err := s.reservations.ReplaceItems(ctx, r.ID, items); err != nil {
		return nil, err
	}
	r.FinalItems = items

	req.Status = decision
	req.ReservationID = &r.ID
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}

	if s.emailSvc != nil {
		if err := s.emailSvc.SendCheckoutInvitation(ctx, r, tok.Plaintext); err != nil {
			logger.Error("failed to send checkout invitation", "reservation_id", r.ID, "error", err)
		}
	}

	logger.Info("reservation materialized from request",
		"request_id", req.ID, "reservation_id", r.ID, "decision", decision, "price_total", total)
	return r, nil
}

func (s *requestService) Reject(ctx context.Context, requestID, reason string) (*domain.ReservationRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(req.Status, domain.StatusRejected); err != nil {
		return nil, err
	}

	req.Status = domain.StatusRejected
	req.RejectionReason = reason
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}

	if s.emailSvc != nil {
		if err := s.emailSvc.SendRequestRejected(ctx, req, reason); err != nil {
			logger.Error("failed to send rejection notice", "request_id", req.ID, "error", err)
		}
	}
	return req, nil
}

// withItemIDs assigns ids to lines that arrived without one
func withItemIDs(items []domain.FinalItem) []domain.FinalItem {
	out := make([]domain.FinalItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
