package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"packbooker-backend/internal/domain"
	"packbooker-backend/internal/repository"
)

type requestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) repository.RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `id, pack_key, customer_email, customer_name, start_at, end_at, address, message, status,
	public_token_hash, public_token_expires_at, reservation_id, rejection_reason, created_at, updated_at`

func scanRequest(row rowScanner) (*domain.ReservationRequest, error) {
	req := &domain.ReservationRequest{}
	err := row.Scan(
		&req.ID, &req.PackKey, &req.CustomerEmail, &req.CustomerName, &req.StartAt, &req.EndAt, &req.Address, &req.Message, &req.Status,
		&req.PublicTokenHash, &req.PublicTokenExpiresAt, &req.ReservationID, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ReservationRequest) error {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	query := `INSERT INTO reservation_requests (` + requestColumns + `)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.PackKey, req.CustomerEmail, req.CustomerName, req.StartAt, req.EndAt, req.Address, req.Message, req.Status,
		req.PublicTokenHash, req.PublicTokenExpiresAt, req.ReservationID, req.RejectionReason, req.CreatedAt, req.UpdatedAt,
	)
	return err
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ReservationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM reservation_requests WHERE id = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "reservation request", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) Update(ctx context.Context, req *domain.ReservationRequest) error {
	query := `UPDATE reservation_requests SET
		status=$1, public_token_hash=$2, public_token_expires_at=$3,
		reservation_id=$4, rejection_reason=$5, updated_at=$6
		WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query,
		req.Status, req.PublicTokenHash, req.PublicTokenExpiresAt,
		req.ReservationID, req.RejectionReason, time.Now(), req.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "reservation request", ID: req.ID}
	}
	return nil
}

func (r *requestRepository) List(ctx context.Context, status domain.ReservationStatus, page, pageSize int32) ([]domain.ReservationRequest, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + requestColumns + ` FROM reservation_requests`
	countQuery := `SELECT count(*) FROM reservation_requests`
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

	var out []domain.ReservationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *req)
	}
	return out, count, rows.Err()
}

func (r *requestRepository) ReplaceItems(ctx context.Context, requestID string, items []domain.FinalItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM request_items WHERE request_id = $1`, requestID); err != nil {
		return err
	}
	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO request_items (id, request_id, label, qty, unit_price, is_extra, product_id) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.ID, requestID, it.Label, it.Qty, it.UnitPrice, it.IsExtra, it.ProductID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *requestRepository) ListItems(ctx context.Context, requestID string) ([]domain.FinalItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, qty, unit_price, is_extra, product_id FROM request_items WHERE request_id = $1 ORDER BY is_extra, label`,
		requestID)
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
