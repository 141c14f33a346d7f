package domain

import "time"

// ReservationRequest is the pre-approval intake record filled in by a
// customer. It carries its own public token pair so the customer can
// follow up before any Reservation exists.
type ReservationRequest struct {
	ID            string            `json:"id"`
	PackKey       PackKey           `json:"pack_key"`
	CustomerEmail string            `json:"customer_email"`
	CustomerName  string            `json:"customer_name"`
	StartAt       time.Time         `json:"start_at"`
	EndAt         time.Time         `json:"end_at"`
	Address       string            `json:"address"`
	Message       string            `json:"message,omitempty"`
	Status        ReservationStatus `json:"status"`

	// RequestedItems uses the same line shape as Reservation.FinalItems;
	// the operator edits them into the final list on approval/adjustment.
	RequestedItems []FinalItem `json:"requested_items,omitempty"`

	PublicTokenHash      string     `json:"-"`
	PublicTokenExpiresAt *time.Time `json:"-"`

	// ReservationID is set once the request is approved and a
	// Reservation has been materialized from it.
	ReservationID *string `json:"reservation_id,omitempty"`

	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
