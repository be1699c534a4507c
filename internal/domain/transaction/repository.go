package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiora/studiora-api/internal/pkg/jsonx"
)

// Repository defines transaction data access
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Transaction, error)
	MarkSucceeded(ctx context.Context, sessionID, chargeID string) (*Transaction, error)
	SetStatusWithNote(ctx context.Context, id uuid.UUID, status Status, note jsonx.RawMessage) error
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Transaction, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates transaction repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	query := `SELECT * FROM transactions WHERE id = $1`
	var t Transaction
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (r *repository) GetBySessionID(ctx context.Context, sessionID string) (*Transaction, error) {
	query := `SELECT * FROM transactions WHERE checkout_session_id = $1`
	var t Transaction
	err := r.db.GetContext(ctx, &t, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction by session: %w", err)
	}
	return &t, nil
}

// MarkSucceeded records the payment confirmation and optional charge id for
// the transaction bound to the session, returning the updated row. Returns
// (nil, nil) when no transaction references the session.
func (r *repository) MarkSucceeded(ctx context.Context, sessionID, chargeID string) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $2,
		    charge_id = COALESCE(NULLIF($3, ''), charge_id),
		    paid_at = COALESCE(paid_at, NOW()),
		    updated_at = NOW()
		WHERE checkout_session_id = $1
		RETURNING *
	`
	var t Transaction
	err := r.db.GetContext(ctx, &t, query, sessionID, StatusSucceeded, chargeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark transaction succeeded: %w", err)
	}
	return &t, nil
}

func (r *repository) SetStatusWithNote(ctx context.Context, id uuid.UUID, status Status, note jsonx.RawMessage) error {
	query := `
		UPDATE transactions
		SET status = $2, review_note = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, status, note)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Transaction, error) {
	query := `
		SELECT * FROM transactions
		WHERE status = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	transactions := make([]*Transaction, 0)
	err := r.db.SelectContext(ctx, &transactions, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
