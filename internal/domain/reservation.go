package domain

import "time"

type ReservationStatus string

const (
	StatusNew             ReservationStatus = "NEW"
	StatusPendingReview   ReservationStatus = "PENDING_REVIEW"
	StatusApproved        ReservationStatus = "APPROVED"
	StatusAdjusted        ReservationStatus = "ADJUSTED"
	StatusRejected        ReservationStatus = "REJECTED"
	StatusAwaitingPayment ReservationStatus = "AWAITING_PAYMENT"
	StatusConfirmed       ReservationStatus = "CONFIRMED"
	StatusAwaitingBalance ReservationStatus = "AWAITING_BALANCE"
	StatusCompleted       ReservationStatus = "COMPLETED"
	StatusCancelled       ReservationStatus = "CANCELLED"
)

// transitions is the full booking lifecycle graph. Anything not listed
// here is rejected with a ConflictError by CheckTransition.
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusNew:             {StatusPendingReview, StatusApproved},
	StatusPendingReview:   {StatusApproved, StatusAdjusted, StatusRejected},
	StatusApproved:        {StatusAwaitingPayment},
	StatusAdjusted:        {StatusAwaitingPayment},
	StatusAwaitingPayment: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusAwaitingBalance, StatusCompleted, StatusCancelled},
	StatusAwaitingBalance: {StatusConfirmed, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle move
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a typed ConflictError for illegal moves
func CheckTransition(from, to ReservationStatus) error {
	if !CanTransition(from, to) {
		return &ConflictError{
			Reason: ReasonInvalidTransition,
			From:   from,
			To:     to,
		}
	}
	return nil
}

// IsTerminal reports whether a status has no outgoing transitions.
// Terminal reservations are retained for audit, never deleted.
func IsTerminal(s ReservationStatus) bool {
	return len(transitions[s]) == 0
}

type PackKey string

const (
	PackConference PackKey = "conference"
	PackSoiree     PackKey = "soiree"
	PackMariage    PackKey = "mariage"
)

// ValidPackKey reports whether k names a known pack
func ValidPackKey(k PackKey) bool {
	switch k {
	case PackConference, PackSoiree, PackMariage:
		return true
	}
	return false
}

// FinalItem is one line of a reservation's itemized list: either a
// pack-default inclusion (IsExtra false, no unit price) or a priced
// add-on. ProductID links extras to the catalog so checkout line items
// never rely on label matching.
type FinalItem struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Qty       int      `json:"qty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	IsExtra   bool     `json:"is_extra"`
	ProductID *string  `json:"product_id,omitempty"`
}

type Reservation struct {
	ID            string            `json:"id"`
	PackKey       PackKey           `json:"pack_key"`
	CustomerEmail string            `json:"customer_email"`
	CustomerName  string            `json:"customer_name"`
	StartAt       time.Time         `json:"start_at"`
	EndAt         time.Time         `json:"end_at"`
	Address       string            `json:"address"`
	Status        ReservationStatus `json:"status"`

	FinalItems []FinalItem `json:"final_items,omitempty"`

	// Money fields are EUR amounts rounded to two decimals.
	BasePackPrice float64 `json:"base_pack_price"`
	ExtrasTotal   float64 `json:"extras_total"`
	PriceTotal    float64 `json:"price_total"`

	DepositAmount     float64    `json:"deposit_amount"`
	DepositPaidAmount float64    `json:"deposit_paid_amount"`
	DepositPaidAt     *time.Time `json:"deposit_paid_at,omitempty"`
	DepositSessionID  *string    `json:"deposit_session_id,omitempty"`

	BalanceAmount    float64    `json:"balance_amount"`
	BalanceDueAt     *time.Time `json:"balance_due_at,omitempty"`
	BalancePaidAt    *time.Time `json:"balance_paid_at,omitempty"`
	BalanceSessionID *string    `json:"balance_session_id,omitempty"`

	ReminderCount        int        `json:"reminder_count"`
	BalanceReminderCount int        `json:"balance_reminder_count"`
	LastReminderAt       *time.Time `json:"last_reminder_at,omitempty"`

	// Only the SHA-256 of the public token is ever persisted.
	PublicTokenHash      string     `json:"-"`
	PublicTokenExpiresAt *time.Time `json:"-"`

	RequestID *string `json:"request_id,omitempty"`

	ClientSignature string     `json:"client_signature,omitempty"`
	ClientSignedAt  *time.Time `json:"client_signed_at,omitempty"`

	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`
	CancellationReason      string     `json:"cancellation_reason,omitempty"`
	RefundPolicyApplied     string     `json:"refund_policy_applied,omitempty"`
	RefundEstimateAmount    *float64   `json:"refund_estimate_amount,omitempty"`

	// Revision is a monotonic counter; conditional writes carry the
	// revision they read so concurrent updates fail fast instead of
	// silently overwriting one another.
	Revision  int32     `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullyPaid reports whether all amounts due have been captured
func (r *Reservation) FullyPaid() bool {
	if r.DepositPaidAt == nil {
		return false
	}
	return r.BalanceAmount <= 0 || r.BalancePaidAt != nil
}
