package enrollment

import (
	"time"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/jsonx"
)

// Status represents the lifecycle of an enrollment.
type Status string

const (
	StatusActive           Status = "active"
	StatusWaitlisted       Status = "waitlisted"
	StatusWaitlistAccepted Status = "waitlist_accepted"
	StatusCancelled        Status = "cancelled"
)

// Enrollment is the reconciliation output record, unique on
// (user_id, program_id). Repeat delivery of the same payment event merges
// into the existing row instead of creating a second one.
type Enrollment struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	UserID          uuid.UUID        `db:"user_id" json:"user_id"`
	ProgramID       uuid.UUID        `db:"program_id" json:"program_id"`
	StudioID        uuid.UUID        `db:"studio_id" json:"studio_id"`
	Status          Status           `db:"status" json:"status"`
	ProfileSnapshot jsonx.RawMessage `db:"profile_snapshot" json:"profile_snapshot,omitempty"`
	FormData        jsonx.RawMessage `db:"form_data" json:"form_data,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the enrollment occupies a seat.
func (e *Enrollment) IsActive() bool {
	return e.Status == StatusActive
}
