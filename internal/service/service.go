package service

import (
	"context"
	"time"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/pricing"
)

// SubmitRequestInput is the customer intake payload
type SubmitRequestInput struct {
	PackKey       domain.PackKey
	CustomerEmail string
	CustomerName  string
	StartAt       time.Time
	EndAt         time.Time
	Address       string
	Message       string
	Items         []domain.FinalItem
}

// ReservationSummary is the token-gated public view of a booking. It
// deliberately omits internal fields (hashes, session ids, counters).
type ReservationSummary struct {
	ID            string                   `json:"id"`
	PackKey       domain.PackKey           `json:"pack_key"`
	CustomerName  string                   `json:"customer_name"`
	StartAt       time.Time                `json:"start_at"`
	EndAt         time.Time                `json:"end_at"`
	Status        domain.ReservationStatus `json:"status"`
	PriceTotal    float64                  `json:"price_total"`
	DepositAmount float64                  `json:"deposit_amount"`
	DepositPaid   bool                     `json:"deposit_paid"`
	BalanceAmount float64                  `json:"balance_amount"`
	BalanceDueAt  *time.Time               `json:"balance_due_at,omitempty"`
	BalancePaid   bool                     `json:"balance_paid"`
	FinalItems    []domain.FinalItem       `json:"final_items"`
}

type RequestService interface {
	Submit(ctx context.Context, in SubmitRequestInput) (*domain.ReservationRequest, error)
	Get(ctx context.Context, id string) (*domain.ReservationRequest, error)
	List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.ReservationRequest, int32, error)
	// Approve materializes a Reservation from the request and moves it
	// straight to AWAITING_PAYMENT with a fresh checkout link emailed out.
	Approve(ctx context.Context, requestID string) (*domain.Reservation, error)
	// Adjust replaces the requested items before materializing, marking
	// the request ADJUSTED instead of APPROVED.
	Adjust(ctx context.Context, requestID string, items []domain.FinalItem) (*domain.Reservation, error)
	Reject(ctx context.Context, requestID, reason string) (*domain.ReservationRequest, error)
}

type ReservationService interface {
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error)
	// GetPublicStatus verifies the bearer token before disclosing
	// anything about the reservation.
	GetPublicStatus(ctx context.Context, id, token string) (*ReservationSummary, error)
	// Adjust replaces final_items and recomputes all price fields before
	// the state write commits; a recomputation failure leaves the prior
	// state intact.
	Adjust(ctx context.Context, id string, items []domain.FinalItem) (*domain.Reservation, error)
	Cancel(ctx context.Context, id, reason string) (*domain.Reservation, *pricing.RefundEstimate, error)
	CancelPublic(ctx context.Context, id, token, reason string) (*domain.Reservation, *pricing.RefundEstimate, error)
	Complete(ctx context.Context, id string) (*domain.Reservation, error)
}

// CheckoutSession is what a customer gets redirected to
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// ConfirmResult reports a processed payment confirmation. GuaranteeURL
// is set when a chained deposit-hold session was created.
type ConfirmResult struct {
	Reservation  *domain.Reservation `json:"reservation"`
	Kind         domain.OrderKind    `json:"kind"`
	GuaranteeURL string              `json:"guarantee_url,omitempty"`
}

type PaymentService interface {
	// CreateCheckout issues (or replays) the checkout session matching
	// the reservation's current stage: the deposit flow while
	// AWAITING_PAYMENT, the balance flow while AWAITING_BALANCE.
	CreateCheckout(ctx context.Context, reservationID string) (*CheckoutSession, error)
	CreateCheckoutPublic(ctx context.Context, reservationID, token string) (*CheckoutSession, error)
	// Confirm handles the provider's redirect/webhook leg carrying the
	// session id back, advancing the state machine on verified payment.
	Confirm(ctx context.Context, sessionID, providerPaymentID string) (*ConfirmResult, error)
}

// SessionLine is one checkout line item handed to the provider
type SessionLine struct {
	Title     string
	Qty       int
	UnitPrice float64
}

// SessionRequest is the provider-agnostic session creation input
type SessionRequest struct {
	Reference  string
	Lines      []SessionLine
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]any
}

// Session is the provider's answer: an id to persist and a URL to
// redirect the customer to.
type Session struct {
	ID  string
	URL string
}

// ProviderPayment is the provider's view of a captured payment
type ProviderPayment struct {
	ID        string
	Status    string
	Amount    float64
	Reference string
}

// PaymentGateway abstracts the external payment processor
type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	PaymentStatus(ctx context.Context, providerPaymentID string) (*ProviderPayment, error)
}

type EmailService interface {
	SendRequestReceived(ctx context.Context, req *domain.ReservationRequest, token string) error
	SendRequestRejected(ctx context.Context, req *domain.ReservationRequest, reason string) error
	SendCheckoutInvitation(ctx context.Context, r *domain.Reservation, token string) error
	SendPaymentReminder(ctx context.Context, r *domain.Reservation, token string, finalNotice bool) error
	SendBalanceReminder(ctx context.Context, r *domain.Reservation, token string, finalNotice bool) error
	SendDepositReceipt(ctx context.Context, r *domain.Reservation) error
	SendCancellationNotice(ctx context.Context, r *domain.Reservation, estimate pricing.RefundEstimate) error
}

// InvoiceLine is one row of a rendered invoice
type InvoiceLine struct {
	Label     string  `json:"label"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// InvoiceData is everything an external renderer needs; the core never
// deals in formatting.
type InvoiceData struct {
	Number        string        `json:"number"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	EventStart    time.Time     `json:"event_start"`
	EventEnd      time.Time     `json:"event_end"`
	Lines         []InvoiceLine `json:"lines"`
	Total         float64       `json:"total"`
	Deposit       float64       `json:"deposit"`
	Balance       float64       `json:"balance"`
	IssuedAt      time.Time     `json:"issued_at"`
}

// DocumentRenderer is an external collaborator turning invoice data
// into a PDF byte stream.
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, data InvoiceData) ([]byte, error)
}

type DocumentService interface {
	BuildInvoice(ctx context.Context, reservationID string) (*InvoiceData, error)
	RenderInvoicePDF(ctx context.Context, reservationID string) ([]byte, error)
}

// CatalogService exposes the extras catalog to operators
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
