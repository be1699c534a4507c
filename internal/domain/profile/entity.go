package profile

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Profile is the normalized contact/identity store, maintained by the
// profile CRUD surface (not this service).
type Profile struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	UserID      uuid.UUID      `db:"user_id" json:"user_id"`
	FirstName   sql.NullString `db:"first_name" json:"first_name,omitempty"`
	LastName    sql.NullString `db:"last_name" json:"last_name,omitempty"`
	Address     sql.NullString `db:"address" json:"address,omitempty"`
	City        sql.NullString `db:"city" json:"city,omitempty"`
	Phone       sql.NullString `db:"phone" json:"phone,omitempty"`
	Email       sql.NullString `db:"email" json:"email,omitempty"`
	DateOfBirth sql.NullString `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Snapshot is a point-in-time copy of a buyer's contact data, resolved at
// reconciliation time. Once attached to an enrollment it is never updated,
// so later profile edits cannot rewrite the audit record.
type Snapshot struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

// requiredFields are the snapshot fields enrollment cannot proceed without.
var requiredFields = []struct {
	name string
	get  func(s *Snapshot) *string
}{
	{"first_name", func(s *Snapshot) *string { return s.FirstName }},
	{"last_name", func(s *Snapshot) *string { return s.LastName }},
	{"address", func(s *Snapshot) *string { return s.Address }},
	{"phone", func(s *Snapshot) *string { return s.Phone }},
}

// MissingRequired returns the names of required enrollment fields that are
// absent or empty in the snapshot.
func (s *Snapshot) MissingRequired() []string {
	missing := []string{}
	for _, f := range requiredFields {
		v := f.get(s)
		if v == nil || *v == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Fields returns the non-empty snapshot fields as a flat map, used for
// notification payloads.
func (s *Snapshot) Fields() map[string]string {
	out := map[string]string{}
	put := func(key string, v *string) {
		if v != nil && *v != "" {
			out[key] = *v
		}
	}
	put("first_name", s.FirstName)
	put("last_name", s.LastName)
	put("address", s.Address)
	put("city", s.City)
	put("phone", s.Phone)
	put("email", s.Email)
	put("date_of_birth", s.DateOfBirth)
	return out
}
