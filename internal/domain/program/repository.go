package program

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines program data access
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Program, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates program repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Program, error) {
	query := `SELECT * FROM programs WHERE id = $1`
	var p Program
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	return &p, nil
}
