package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines cart data access
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]*Item, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates cart repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Cart, error) {
	query := `SELECT * FROM carts WHERE id = $1`
	var c Cart
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &c, nil
}

func (r *repository) ListItems(ctx context.Context, cartID uuid.UUID) ([]*Item, error) {
	query := `
		SELECT * FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC
	`
	items := make([]*Item, 0)
	err := r.db.SelectContext(ctx, &items, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

// MarkCompleted transitions an active cart to completed. The status guard
// makes the transition happen exactly once under replay.
func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE carts
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`
	_, err := r.db.ExecContext(ctx, query, id, StatusCompleted, StatusActive)
	if err != nil {
		return fmt.Errorf("failed to complete cart: %w", err)
	}
	return nil
}
