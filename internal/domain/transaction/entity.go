package transaction

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/jsonx"
)

// Status represents transaction status
type Status string

const (
	StatusPending                 Status = "pending"
	StatusSucceeded               Status = "succeeded"
	StatusFailedProfileIncomplete Status = "failed_profile_incomplete"
	StatusNeedsManualReviewFull   Status = "needs_manual_review_full"
)

// Transaction represents one payment attempt. Rows are created when a
// payment intent begins and are only ever mutated by the status updater,
// never deleted.
type Transaction struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	UserID            uuid.NullUUID    `db:"user_id" json:"user_id,omitempty"`
	CheckoutSessionID sql.NullString   `db:"checkout_session_id" json:"checkout_session_id,omitempty"`
	ChargeID          sql.NullString   `db:"charge_id" json:"charge_id,omitempty"`
	Status            Status           `db:"status" json:"status"`
	Metadata          jsonx.RawMessage `db:"metadata" json:"metadata,omitempty"`
	ReviewNote        jsonx.RawMessage `db:"review_note" json:"review_note,omitempty"`
	PaidAt            sql.NullTime     `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// IsSucceeded checks if the payment was confirmed
func (t *Transaction) IsSucceeded() bool {
	return t.Status == StatusSucceeded
}
