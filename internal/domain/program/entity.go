package program

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Program is the capacity-bearing resource buyers enroll into.
type Program struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	StudioID           uuid.UUID     `db:"studio_id" json:"studio_id"`
	Title              string        `db:"title" json:"title"`
	Capacity           sql.NullInt64 `db:"capacity" json:"capacity,omitempty"` // NULL = unlimited
	WaitlistEnabled    bool          `db:"waitlist_enabled" json:"waitlist_enabled"`
	ManualFullOverride bool          `db:"manual_full_override" json:"manual_full_override"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// HasCapacityLimit reports whether the program enforces a seat count.
func (p *Program) HasCapacityLimit() bool {
	return p.Capacity.Valid && p.Capacity.Int64 > 0
}
