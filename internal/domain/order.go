package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

type OrderKind string

const (
	// OrderKindFull is the primary checkout session covering price_total
	OrderKindFull OrderKind = "FULL"
	// OrderKindDeposit is the chained guarantee hold for deposit_amount
	OrderKindDeposit OrderKind = "DEPOSIT"
	// OrderKindBalance covers the remainder due before the event
	OrderKindBalance OrderKind = "BALANCE"
)

// Order is the payment-processor transaction record backing invoicing.
// One is created PENDING alongside each checkout session and marked
// PAID when the provider confirms payment.
type Order struct {
	ID                string      `json:"id"`
	ReservationID     *string     `json:"reservation_id,omitempty"`
	ProviderSessionID string      `json:"provider_session_id"`
	ProviderPaymentID *string     `json:"provider_payment_id,omitempty"`
	// CheckoutURL is the hosted payment page; kept so retried page
	// loads replay the same session instead of creating another.
	CheckoutURL       string      `json:"checkout_url"`
	Kind              OrderKind   `json:"kind"`
	Amount            float64     `json:"amount"`
	Currency          string      `json:"currency"`
	Status            OrderStatus `json:"status"`
	PaidAt            *time.Time  `json:"paid_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Product is a catalog entry extras can reference by id
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
