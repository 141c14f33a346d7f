package repository

import (
	"context"
	"time"

	"packbooker-backend/internal/domain"
)

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	// Update writes the full row conditionally on r.Revision; a stale
	// revision returns a ConflictError and bumps nothing. On success
	// r.Revision is incremented in place.
	Update(ctx context.Context, r *domain.Reservation) error
	List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error)

	ReplaceItems(ctx context.Context, reservationID string, items []domain.FinalItem) error
	ListItems(ctx context.Context, reservationID string) ([]domain.FinalItem, error)

	// Reminder selection per the scheduler eligibility rules.
	ListPaymentReminderCandidates(ctx context.Context, now time.Time, firstDelay, repeatDelay time.Duration, maxReminders int) ([]domain.Reservation, error)
	ListBalanceReminderCandidates(ctx context.Context, now time.Time, maxReminders int) ([]domain.Reservation, error)
	ListElapsedConfirmed(ctx context.Context, now time.Time) ([]domain.Reservation, error)

	// ClaimPaymentReminder rotates the public token and increments
	// reminder_count in one conditional write. It returns false when the
	// counter moved since it was read, which makes repeated job runs
	// harmless.
	ClaimPaymentReminder(ctx context.Context, id string, seenCount int, tokenHash string, expiresAt, now time.Time) (bool, error)
	ClaimBalanceReminder(ctx context.Context, id string, seenCount int, tokenHash string, expiresAt, now time.Time) (bool, error)
}

type RequestRepository interface {
	Create(ctx context.Context, req *domain.ReservationRequest) error
	GetByID(ctx context.Context, id string) (*domain.ReservationRequest, error)
	Update(ctx context.Context, req *domain.ReservationRequest) error
	List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.ReservationRequest, int32, error)

	ReplaceItems(ctx context.Context, requestID string, items []domain.FinalItem) error
	ListItems(ctx context.Context, requestID string) ([]domain.FinalItem, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, id, providerPaymentID string, paidAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	ListByReservation(ctx context.Context, reservationID string) ([]domain.Order, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
}
