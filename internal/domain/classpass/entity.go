package classpass

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/jsonx"
)

// PurchaseStatus represents class pass purchase status
type PurchaseStatus string

const (
	PurchaseStatusActive  PurchaseStatus = "active"
	PurchaseStatusExpired PurchaseStatus = "expired"
)

// LedgerReason defines supported ledger entry reasons.
type LedgerReason string

const (
	ReasonPurchase   LedgerReason = "purchase"
	ReasonRedemption LedgerReason = "redemption"
	ReasonAdminGrant LedgerReason = "admin_grant"
	ReasonExpiry     LedgerReason = "expiry"
)

// Purchase is one class pass purchase, unique on the external checkout
// session id. The unique key is what makes repeated webhook delivery
// collapse to a single purchase record.
type Purchase struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	UserID            uuid.UUID      `db:"user_id" json:"user_id"`
	StudioID          uuid.UUID      `db:"studio_id" json:"studio_id"`
	ProductID         string         `db:"product_id" json:"product_id"`
	CheckoutSessionID string         `db:"checkout_session_id" json:"checkout_session_id"`
	CreditsTotal      int            `db:"credits_total" json:"credits_total"`
	CreditsUsed       int            `db:"credits_used" json:"credits_used"`
	ExpiresAt         sql.NullTime   `db:"expires_at" json:"expires_at,omitempty"`
	Status            PurchaseStatus `db:"status" json:"status"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// LedgerEntry is an append-only, signed balance record. Entries are never
// updated or deleted; a user's balance is the sum of deltas, so concurrent
// grants and re-ordered retries have no mutable counter to race on.
type LedgerEntry struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	UserID     uuid.UUID        `db:"user_id" json:"user_id"`
	StudioID   uuid.UUID        `db:"studio_id" json:"studio_id"`
	PurchaseID uuid.NullUUID    `db:"purchase_id" json:"purchase_id,omitempty"`
	Delta      int              `db:"delta" json:"delta"`
	Reason     LedgerReason     `db:"reason" json:"reason"`
	Metadata   jsonx.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}
