package classpass

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GrantRequest describes one class pass purchase to record.
type GrantRequest struct {
	UserID            uuid.UUID
	StudioID          uuid.UUID
	ProductID         string
	CheckoutSessionID string
	Credits           int
	ExpirationMonths  int // 0 = non-expiring
}

// Granter records class pass purchases and their balance-granting ledger
// entries.
type Granter struct {
	repo Repository
}

// NewGranter creates the credit ledger granter
func NewGranter(repo Repository) *Granter {
	return &Granter{repo: repo}
}

// Grant idempotently records a purchase and appends one balance-granting
// ledger entry.
//
// The purchase insert is keyed on the checkout session id; a duplicate key
// means the event was already delivered and is not an error. The row is
// then re-read (covering both the fresh and the already-existed case) and
// the ledger entry appended only if the purchase does not have one yet.
// A replay, or a crash between insert and append, never double-grants.
func (g *Granter) Grant(ctx context.Context, req GrantRequest) (*Purchase, error) {
	if req.Credits < 0 {
		return nil, ErrInvalidCredits
	}

	p := &Purchase{
		ID:                uuid.New(),
		UserID:            req.UserID,
		StudioID:          req.StudioID,
		ProductID:         req.ProductID,
		CheckoutSessionID: req.CheckoutSessionID,
		CreditsTotal:      req.Credits,
		Status:            PurchaseStatusActive,
	}
	if req.ExpirationMonths > 0 {
		p.ExpiresAt = sql.NullTime{Time: time.Now().AddDate(0, req.ExpirationMonths, 0), Valid: true}
	}

	inserted, err := g.repo.InsertPurchase(ctx, p)
	if err != nil {
		return nil, err
	}
	if !inserted {
		log.Info().
			Str("session_id", req.CheckoutSessionID).
			Msg("class pass purchase already recorded for session")
	}

	purchase, err := g.repo.GetPurchaseBySessionID(ctx, req.CheckoutSessionID)
	if err != nil {
		return nil, err
	}

	if purchase.CreditsTotal <= 0 {
		return purchase, nil
	}

	granted, err := g.repo.HasLedgerForPurchase(ctx, purchase.ID, ReasonPurchase)
	if err != nil {
		return nil, err
	}
	if granted {
		return purchase, nil
	}

	meta, _ := json.Marshal(map[string]string{
		"product_id":          purchase.ProductID,
		"checkout_session_id": purchase.CheckoutSessionID,
	})
	entry := &LedgerEntry{
		ID:         uuid.New(),
		UserID:     purchase.UserID,
		StudioID:   purchase.StudioID,
		PurchaseID: uuid.NullUUID{UUID: purchase.ID, Valid: true},
		Delta:      purchase.CreditsTotal,
		Reason:     ReasonPurchase,
		Metadata:   meta,
	}
	if err := g.repo.AppendLedger(ctx, entry); err != nil {
		return nil, err
	}

	return purchase, nil
}

// Balance returns the user's credit balance in a studio, derived by
// summing ledger deltas.
func (g *Granter) Balance(ctx context.Context, userID, studioID uuid.UUID) (int, error) {
	return g.repo.SumLedger(ctx, userID, studioID)
}

// History returns paginated ledger entries for a user in a studio
func (g *Granter) History(ctx context.Context, userID, studioID uuid.UUID, limit, offset int) ([]*LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return g.repo.ListLedger(ctx, userID, studioID, limit, offset)
}
