package transaction

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Updater records terminal outcomes on transactions during reconciliation.
// It is the only component that mutates transaction rows.
type Updater struct {
	repo Repository
}

// NewUpdater creates the transaction status updater
func NewUpdater(repo Repository) *Updater {
	return &Updater{repo: repo}
}

// RecordConfirmation marks the session's transaction succeeded. The charge
// id may be empty when enrichment failed; confirmation never depends on it.
// Returns nil (not an error) when no transaction references the session.
func (u *Updater) RecordConfirmation(ctx context.Context, sessionID, chargeID string) (*Transaction, error) {
	tx, err := u.repo.MarkSucceeded(ctx, sessionID, chargeID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		log.Warn().Str("session_id", sessionID).Msg("no transaction for checkout session")
	}
	return tx, nil
}

// FlagSkippedItems records every skipped item from one reconciliation run in
// a single review note: missing profile fields and capacity-blocked program
// ids together, so neither list is lost when a cart has both. A capacity
// block takes the manual-review status since it needs an admin to resolve.
func (u *Updater) FlagSkippedItems(ctx context.Context, id uuid.UUID, missingFields []string, blockedProgramIDs []uuid.UUID) error {
	fields := map[string]interface{}{}
	if len(missingFields) > 0 {
		fields["missing_fields"] = missingFields
	}
	if len(blockedProgramIDs) > 0 {
		ids := make([]string, 0, len(blockedProgramIDs))
		for _, pid := range blockedProgramIDs {
			ids = append(ids, pid.String())
		}
		fields["blocked_program_ids"] = ids
	}
	note, _ := json.Marshal(fields)

	status := StatusFailedProfileIncomplete
	if len(blockedProgramIDs) > 0 {
		status = StatusNeedsManualReviewFull
	}
	return u.repo.SetStatusWithNote(ctx, id, status, note)
}

// GetByID returns a transaction by id
func (u *Updater) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return u.repo.GetByID(ctx, id)
}

// ListByStatus returns transactions in the given status
func (u *Updater) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return u.repo.ListByStatus(ctx, status, limit, offset)
}
