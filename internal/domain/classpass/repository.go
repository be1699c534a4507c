package classpass

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines class pass data access
type Repository interface {
	// InsertPurchase inserts a purchase row. Returns false without error
	// when a purchase for the same checkout session already exists.
	InsertPurchase(ctx context.Context, p *Purchase) (bool, error)
	GetPurchaseBySessionID(ctx context.Context, sessionID string) (*Purchase, error)
	AppendLedger(ctx context.Context, e *LedgerEntry) error
	HasLedgerForPurchase(ctx context.Context, purchaseID uuid.UUID, reason LedgerReason) (bool, error)
	SumLedger(ctx context.Context, userID, studioID uuid.UUID) (int, error)
	ListLedger(ctx context.Context, userID, studioID uuid.UUID, limit, offset int) ([]*LedgerEntry, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates class pass repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertPurchase(ctx context.Context, p *Purchase) (bool, error) {
	query := `
		INSERT INTO class_pass_purchases
			(id, user_id, studio_id, product_id, checkout_session_id, credits_total, credits_used, expires_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.StudioID,
		p.ProductID,
		p.CheckoutSessionID,
		p.CreditsTotal,
		p.ExpiresAt,
		p.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: insert purchase: %v", ErrInternal, err)
	}
	return true, nil
}

func (r *repository) GetPurchaseBySessionID(ctx context.Context, sessionID string) (*Purchase, error) {
	query := `SELECT * FROM class_pass_purchases WHERE checkout_session_id = $1`
	var p Purchase
	err := r.db.GetContext(ctx, &p, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return &p, nil
}

func (r *repository) AppendLedger(ctx context.Context, e *LedgerEntry) error {
	query := `
		INSERT INTO credit_ledger (id, user_id, studio_id, purchase_id, delta, reason, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.StudioID,
		e.PurchaseID,
		e.Delta,
		e.Reason,
		e.Metadata,
	)
	if err != nil {
		return fmt.Errorf("%w: append ledger entry: %v", ErrInternal, err)
	}
	return nil
}

func (r *repository) HasLedgerForPurchase(ctx context.Context, purchaseID uuid.UUID, reason LedgerReason) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM credit_ledger
			WHERE purchase_id = $1 AND reason = $2
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, purchaseID, reason)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry: %w", err)
	}
	return exists, nil
}

func (r *repository) SumLedger(ctx context.Context, userID, studioID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(delta), 0) FROM credit_ledger
		WHERE user_id = $1 AND studio_id = $2
	`
	var balance int
	err := r.db.GetContext(ctx, &balance, query, userID, studioID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return balance, nil
}

func (r *repository) ListLedger(ctx context.Context, userID, studioID uuid.UUID, limit, offset int) ([]*LedgerEntry, error) {
	query := `
		SELECT * FROM credit_ledger
		WHERE user_id = $1 AND studio_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	entries := make([]*LedgerEntry, 0)
	err := r.db.SelectContext(ctx, &entries, query, userID, studioID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
