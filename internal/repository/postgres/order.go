package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, reservation_id, provider_session_id, provider_payment_id, checkout_url, kind, amount, currency, status, paid_at, created_at, updated_at`

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(&o.ID, &o.ReservationID, &o.ProviderSessionID, &o.ProviderPaymentID, &o.CheckoutURL,
		&o.Kind, &o.Amount, &o.Currency, &o.Status, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.ReservationID, o.ProviderSessionID, o.ProviderPaymentID, o.CheckoutURL,
		o.Kind, o.Amount, o.Currency, o.Status, o.PaidAt, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE provider_session_id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "order", ID: sessionID}
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id, providerPaymentID string, paidAt time.Time) error {
	query := `UPDATE orders SET status=$1, provider_payment_id=$2, paid_at=$3, updated_at=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, domain.OrderStatusPaid, providerPaymentID, paidAt, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func (r *orderRepository) ListByReservation(ctx context.Context, reservationID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE reservation_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
