package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines profile data access
type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetIdentityMetadata(ctx context.Context, userID uuid.UUID) (map[string]string, error)
	UserIDByProfileID(ctx context.Context, profileID uuid.UUID) (uuid.UUID, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates profile repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `SELECT * FROM profiles WHERE user_id = $1`
	var p Profile
	err := r.db.GetContext(ctx, &p, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// GetIdentityMetadata returns the raw identity-provider metadata document
// for a user as a flat string map. Historical records use inconsistent field
// names, which the resolver reconciles.
func (r *repository) GetIdentityMetadata(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	query := `SELECT metadata FROM identity_metadata WHERE user_id = $1`
	var raw []byte
	err := r.db.GetContext(ctx, &raw, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity metadata: %w", err)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	fields := map[string]string{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode identity metadata: %w", err)
	}
	return fields, nil
}

func (r *repository) UserIDByProfileID(ctx context.Context, profileID uuid.UUID) (uuid.UUID, error) {
	query := `SELECT user_id FROM profiles WHERE id = $1`
	var userID uuid.UUID
	err := r.db.GetContext(ctx, &userID, query, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrProfileNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve profile owner: %w", err)
	}
	return userID, nil
}
