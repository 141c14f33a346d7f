package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/repository"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, pack_key, customer_email, customer_name, start_at, end_at, address, status,
	base_pack_price, extras_total, price_total,
	deposit_amount, deposit_paid_amount, deposit_paid_at, deposit_session_id,
	balance_amount, balance_due_at, balance_paid_at, balance_session_id,
	reminder_count, balance_reminder_count, last_reminder_at,
	public_token_hash, public_token_expires_at, request_id,
	client_signature, client_signed_at,
	cancellation_requested_at, cancellation_reason, refund_policy_applied, refund_estimate_amount,
	revision, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	r := &domain.Reservation{}
	err := row.Scan(
		&r.ID, &r.PackKey, &r.CustomerEmail, &r.CustomerName, &r.StartAt, &r.EndAt, &r.Address, &r.Status,
		&r.BasePackPrice, &r.ExtrasTotal, &r.PriceTotal,
		&r.DepositAmount, &r.DepositPaidAmount, &r.DepositPaidAt, &r.DepositSessionID,
		&r.BalanceAmount, &r.BalanceDueAt, &r.BalancePaidAt, &r.BalanceSessionID,
		&r.ReminderCount, &r.BalanceReminderCount, &r.LastReminderAt,
		&r.PublicTokenHash, &r.PublicTokenExpiresAt, &r.RequestID,
		&r.ClientSignature, &r.ClientSignedAt,
		&r.CancellationRequestedAt, &r.CancellationReason, &r.RefundPolicyApplied, &r.RefundEstimateAmount,
		&r.Revision, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reservationRepository) Create(ctx context.Context, rv *domain.Reservation) error {
	now := time.Now()
	rv.Revision = 1
	rv.CreatedAt = now
	rv.UpdatedAt = now
	query := `INSERT INTO reservations (` + reservationColumns + `)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34)`
	_, err := r.db.ExecContext(ctx, query,
		rv.ID, rv.PackKey, rv.CustomerEmail, rv.CustomerName, rv.StartAt, rv.EndAt, rv.Address, rv.Status,
		rv.BasePackPrice, rv.ExtrasTotal, rv.PriceTotal,
		rv.DepositAmount, rv.DepositPaidAmount, rv.DepositPaidAt, rv.DepositSessionID,
		rv.BalanceAmount, rv.BalanceDueAt, rv.BalancePaidAt, rv.BalanceSessionID,
		rv.ReminderCount, rv.BalanceReminderCount, rv.LastReminderAt,
		rv.PublicTokenHash, rv.PublicTokenExpiresAt, rv.RequestID,
		rv.ClientSignature, rv.ClientSignedAt,
		rv.CancellationRequestedAt, rv.CancellationReason, rv.RefundPolicyApplied, rv.RefundEstimateAmount,
		rv.Revision, rv.CreatedAt, rv.UpdatedAt,
	)
	return err
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	rv, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "reservation", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// Update is a full-row conditional write: the WHERE clause carries the
// revision the caller read, so a concurrent writer makes this a no-op
// reported as a ConflictError instead of a silent overwrite.
func (r *reservationRepository) Update(ctx context.Context, rv *domain.Reservation) error {
	query := `UPDATE reservations SET
		status=$1, base_pack_price=$2, extras_total=$3, price_total=$4,
		deposit_amount=$5, deposit_paid_amount=$6, deposit_paid_at=$7, deposit_session_id=$8,
		balance_amount=$9, balance_due_at=$10, balance_paid_at=$11, balance_session_id=$12,
		reminder_count=$13, balance_reminder_count=$14, last_reminder_at=$15,
		public_token_hash=$16, public_token_expires_at=$17,
		client_signature=$18, client_signed_at=$19,
		cancellation_requested_at=$20, cancellation_reason=$21, refund_policy_applied=$22, refund_estimate_amount=$23,
		start_at=$24, end_at=$25, address=$26,
		revision=revision+1, updated_at=$27
		WHERE id=$28 AND revision=$29`
	res, err := r.db.ExecContext(ctx, query,
		rv.Status, rv.BasePackPrice, rv.ExtrasTotal, rv.PriceTotal,
		rv.DepositAmount, rv.DepositPaidAmount, rv.DepositPaidAt, rv.DepositSessionID,
		rv.BalanceAmount, rv.BalanceDueAt, rv.BalancePaidAt, rv.BalanceSessionID,
		rv.ReminderCount, rv.BalanceReminderCount, rv.LastReminderAt,
		rv.PublicTokenHash, rv.PublicTokenExpiresAt,
		rv.ClientSignature, rv.ClientSignedAt,
		rv.CancellationRequestedAt, rv.CancellationReason, rv.RefundPolicyApplied, rv.RefundEstimateAmount,
		rv.StartAt, rv.EndAt, rv.Address,
		time.Now(), rv.ID, rv.Revision,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, rv.ID); getErr != nil {
			return getErr
		}
		return &domain.ConflictError{Reason: "reservation was modified concurrently"}
	}
	rv.Revision++
	return nil
}

func (r *reservationRepository) List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	countQuery := `SELECT count(*) FROM reservations`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		countQuery += ` WHERE status = $1`
		args = append(args, status)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	if status != "" {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	}
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rv)
	}
	return out, count, rows.Err()
}

func (r *reservationRepository) ReplaceItems(ctx context.Context, reservationID string, items []domain.FinalItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_items WHERE reservation_id = $1`, reservationID); err != nil {
		return err
	}
	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO reservation_items (id, reservation_id, label, qty, unit_price, is_extra, product_id) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.ID, reservationID, it.Label, it.Qty, it.UnitPrice, it.IsExtra, it.ProductID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *reservationRepository) ListItems(ctx context.Context, reservationID string) ([]domain.FinalItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, qty, unit_price, is_extra, product_id FROM reservation_items WHERE reservation_id = $1 ORDER BY is_extra, label`,
		reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.FinalItem
	for rows.Next() {
		var it domain.FinalItem
		if err := rows.Scan(&it.ID, &it.Label, &it.Qty, &it.UnitPrice, &it.IsExtra, &it.ProductID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *reservationRepository) ListPaymentReminderCandidates(ctx context.Context, now time.Time, firstDelay, repeatDelay time.Duration, maxReminders int) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE status = $1
		  AND reminder_count < $2
		  AND ((reminder_count = 0 AND created_at < $3)
		    OR (reminder_count > 0 AND last_reminder_at < $4))
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query,
		domain.StatusAwaitingPayment, maxReminders, now.Add(-firstDelay), now.Add(-repeatDelay))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) ListBalanceReminderCandidates(ctx context.Context, now time.Time, maxReminders int) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE deposit_paid_at IS NOT NULL
		  AND balance_paid_at IS NULL
		  AND balance_amount > 0
		  AND balance_due_at IS NOT NULL AND balance_due_at <= $1
		  AND balance_reminder_count < $2
		  AND status IN ($3, $4)
		ORDER BY balance_due_at`
	rows, err := r.db.QueryContext(ctx, query,
		now, maxReminders, domain.StatusConfirmed, domain.StatusAwaitingBalance)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) ListElapsedConfirmed(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE status = $1 AND end_at < $2
		ORDER BY end_at`
	rows, err := r.db.QueryContext(ctx, query, domain.StatusConfirmed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func collectReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

// ClaimPaymentReminder pairs the token rotation with the counter
// increment in one conditional statement. A second runner observing the
// same pre-increment count updates zero rows and backs off before any
// email goes out.
func (r *reservationRepository) ClaimPaymentReminder(ctx context.Context, id string, seenCount int, tokenHash string, expiresAt, now time.Time) (bool, error) {
	query := `UPDATE reservations SET
		reminder_count = reminder_count + 1,
		last_reminder_at = $1,
		public_token_hash = $2,
		public_token_expires_at = $3,
		revision = revision + 1,
		updated_at = $1
		WHERE id = $4 AND reminder_count = $5 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, now, tokenHash, expiresAt, id, seenCount, domain.StatusAwaitingPayment)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *reservationRepository) ClaimBalanceReminder(ctx context.Context, id string, seenCount int, tokenHash string, expiresAt, now time.Time) (bool, error) {
	query := `UPDATE reservations SET
		balance_reminder_count = balance_reminder_count + 1,
		last_reminder_at = $1,
		public_token_hash = $2,
		public_token_expires_at = $3,
		revision = revision + 1,
		updated_at = $1
		WHERE id = $4 AND balance_reminder_count = $5 AND balance_paid_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, now, tokenHash, expiresAt, id, seenCount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
