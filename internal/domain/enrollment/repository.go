package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines enrollment data access
type Repository interface {
	Upsert(ctx context.Context, e *Enrollment) error
	GetByUserAndProgram(ctx context.Context, userID, programID uuid.UUID) (*Enrollment, error)
	CountActive(ctx context.Context, programID uuid.UUID) (int, error)
	HasActive(ctx context.Context, userID, programID uuid.UUID) (bool, error)
	HasWaitlistAccepted(ctx context.Context, userID, programID uuid.UUID) (bool, error)
	ListByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Enrollment, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates enrollment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Upsert inserts or merges an enrollment on the (user_id, program_id)
// unique key. The stored profile snapshot is kept once written; a replayed
// event cannot rewrite the audit copy.
func (r *repository) Upsert(ctx context.Context, e *Enrollment) error {
	query := `
		INSERT INTO enrollments (id, user_id, program_id, studio_id, status, profile_snapshot, form_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (user_id, program_id) DO UPDATE SET
			status = EXCLUDED.status,
			profile_snapshot = COALESCE(enrollments.profile_snapshot, EXCLUDED.profile_snapshot),
			form_data = EXCLUDED.form_data,
			updated_at = NOW()
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ID,
		e.UserID,
		e.ProgramID,
		e.StudioID,
		e.Status,
		e.ProfileSnapshot,
		e.FormData,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("%w: upsert enrollment: %v", ErrInternal, err)
	}
	return nil
}

func (r *repository) GetByUserAndProgram(ctx context.Context, userID, programID uuid.UUID) (*Enrollment, error) {
	query := `SELECT * FROM enrollments WHERE user_id = $1 AND program_id = $2`
	var e Enrollment
	err := r.db.GetContext(ctx, &e, query, userID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &e, nil
}

func (r *repository) CountActive(ctx context.Context, programID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE program_id = $1 AND status = $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, programID, StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to count active enrollments: %w", err)
	}
	return count, nil
}

func (r *repository) HasActive(ctx context.Context, userID, programID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE user_id = $1 AND program_id = $2 AND status = $3
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, programID, StatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to check active enrollment: %w", err)
	}
	return exists, nil
}

func (r *repository) HasWaitlistAccepted(ctx context.Context, userID, programID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE user_id = $1 AND program_id = $2 AND status = $3
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, programID, StatusWaitlistAccepted)
	if err != nil {
		return false, fmt.Errorf("failed to check waitlist acceptance: %w", err)
	}
	return exists, nil
}

func (r *repository) ListByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Enrollment, error) {
	query := `
		SELECT * FROM enrollments
		WHERE program_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	enrollments := make([]*Enrollment, 0)
	err := r.db.SelectContext(ctx, &enrollments, query, programID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}
