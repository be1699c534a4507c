package profile

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// metadataAliases maps each logical snapshot field to the historical field
// names found in raw identity metadata. Records written before the profile
// migration use transliterated Russian keys; both variants remain in
// production data, so both must be checked. Order matters: the first
// non-empty value wins.
var metadataAliases = map[string][]string{
	"first_name":    {"first_name", "imya"},
	"last_name":     {"last_name", "familiya"},
	"address":       {"address", "adres"},
	"city":          {"city", "gorod"},
	"phone":         {"phone", "telefon"},
	"email":         {"email", "pochta"},
	"date_of_birth": {"date_of_birth", "data_rozhdeniya"},
}

// Resolver builds point-in-time profile snapshots for reconciliation.
type Resolver struct {
	repo Repository
}

// NewResolver creates the snapshot resolver
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve builds a snapshot of the user's contact data, preferring the
// normalized profile store and falling back to raw identity metadata. It
// never fails: on total resolution failure it returns an all-null snapshot,
// which the enrollment gate then treats as incomplete.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) Snapshot {
	p, err := r.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("profile lookup failed, falling back to identity metadata")
	}
	if p != nil {
		return snapshotFromProfile(p)
	}

	meta, err := r.repo.GetIdentityMetadata(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("identity metadata lookup failed")
		return Snapshot{}
	}
	return snapshotFromMetadata(meta)
}

// UserIDByProfileID resolves the owning user for a profile id. Used by the
// orchestrator when an event only carries a profile reference.
func (r *Resolver) UserIDByProfileID(ctx context.Context, profileID uuid.UUID) (uuid.UUID, error) {
	return r.repo.UserIDByProfileID(ctx, profileID)
}

func snapshotFromProfile(p *Profile) Snapshot {
	s := Snapshot{}
	if p.FirstName.Valid && p.FirstName.String != "" {
		s.FirstName = &p.FirstName.String
	}
	if p.LastName.Valid && p.LastName.String != "" {
		s.LastName = &p.LastName.String
	}
	if p.Address.Valid && p.Address.String != "" {
		s.Address = &p.Address.String
	}
	if p.City.Valid && p.City.String != "" {
		s.City = &p.City.String
	}
	if p.Phone.Valid && p.Phone.String != "" {
		s.Phone = &p.Phone.String
	}
	if p.Email.Valid && p.Email.String != "" {
		s.Email = &p.Email.String
	}
	if p.DateOfBirth.Valid && p.DateOfBirth.String != "" {
		s.DateOfBirth = &p.DateOfBirth.String
	}
	return s
}

func snapshotFromMetadata(meta map[string]string) Snapshot {
	if len(meta) == 0 {
		return Snapshot{}
	}

	lookup := func(field string) *string {
		for _, alias := range metadataAliases[field] {
			if v, ok := meta[alias]; ok && v != "" {
				return &v
			}
		}
		return nil
	}

	return Snapshot{
		FirstName:   lookup("first_name"),
		LastName:    lookup("last_name"),
		Address:     lookup("address"),
		City:        lookup("city"),
		Phone:       lookup("phone"),
		Email:       lookup("email"),
		DateOfBirth: lookup("date_of_birth"),
	}
}
