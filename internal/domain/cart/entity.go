package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/jsonx"
)

// Status represents cart status
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Cart groups one or more program enrollments under one checkout. It moves
// from active to completed exactly once, after every item has been
// reconciled.
type Cart struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Item is one purchasable program enrollment with its price snapshot taken
// at checkout time.
type Item struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	CartID        uuid.UUID        `db:"cart_id" json:"cart_id"`
	ProgramID     uuid.UUID        `db:"program_id" json:"program_id"`
	StudioID      uuid.UUID        `db:"studio_id" json:"studio_id"`
	PriceCents    int64            `db:"price_cents" json:"price_cents"`
	LessonDetails jsonx.RawMessage `db:"lesson_details" json:"lesson_details,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}
