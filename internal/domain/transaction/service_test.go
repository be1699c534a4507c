package transaction_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/domain/transaction"
	"github.com/studiora/studiora-api/internal/pkg/jsonx"
)

type stubTxRepo struct {
	bySession map[string]*transaction.Transaction

	markedSession string
	markedCharge  string

	noteID     uuid.UUID
	noteStatus transaction.Status
	note       jsonx.RawMessage

	byID         map[uuid.UUID]*transaction.Transaction
	byStatus     map[transaction.Status][]*transaction.Transaction
	listedStatus transaction.Status
	listedLimit  int
}

func (s *stubTxRepo) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.byID[id], nil
}

func (s *stubTxRepo) GetBySessionID(ctx context.Context, sessionID string) (*transaction.Transaction, error) {
	return s.bySession[sessionID], nil
}

func (s *stubTxRepo) MarkSucceeded(ctx context.Context, sessionID, chargeID string) (*transaction.Transaction, error) {
	s.markedSession = sessionID
	s.markedCharge = chargeID
	tx := s.bySession[sessionID]
	if tx != nil {
		tx.Status = transaction.StatusSucceeded
	}
	return tx, nil
}

func (s *stubTxRepo) SetStatusWithNote(ctx context.Context, id uuid.UUID, status transaction.Status, note jsonx.RawMessage) error {
	s.noteID = id
	s.noteStatus = status
	s.note = note
	return nil
}

func (s *stubTxRepo) ListByStatus(ctx context.Context, status transaction.Status, limit, offset int) ([]*transaction.Transaction, error) {
	s.listedStatus = status
	s.listedLimit = limit
	return s.byStatus[status], nil
}

func TestRecordConfirmation(t *testing.T) {
	tx := &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusPending}
	repo := &stubTxRepo{bySession: map[string]*transaction.Transaction{"cs_1": tx}}
	updater := transaction.NewUpdater(repo)

	got, err := updater.RecordConfirmation(context.Background(), "cs_1", "ch_9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsSucceeded() {
		t.Fatalf("expected succeeded, got %s", got.Status)
	}
	if repo.markedCharge != "ch_9" {
		t.Fatalf("expected charge id forwarded, got %q", repo.markedCharge)
	}
}

func TestRecordConfirmation_UnknownSessionIsNotAnError(t *testing.T) {
	repo := &stubTxRepo{bySession: map[string]*transaction.Transaction{}}
	updater := transaction.NewUpdater(repo)

	got, err := updater.RecordConfirmation(context.Background(), "cs_unknown", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil transaction, got %+v", got)
	}
}

func TestFlagSkippedItems_ProfileIncompleteOnly(t *testing.T) {
	repo := &stubTxRepo{}
	updater := transaction.NewUpdater(repo)
	id := uuid.New()

	if err := updater.FlagSkippedItems(context.Background(), id, []string{"address", "phone"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.noteStatus != transaction.StatusFailedProfileIncomplete {
		t.Fatalf("expected failed_profile_incomplete, got %s", repo.noteStatus)
	}
	if repo.noteID != id {
		t.Fatal("expected transaction id forwarded")
	}

	var note struct {
		MissingFields []string `json:"missing_fields"`
	}
	if err := json.Unmarshal(repo.note, &note); err != nil {
		t.Fatalf("note not valid json: %v", err)
	}
	if len(note.MissingFields) != 2 || note.MissingFields[0] != "address" {
		t.Fatalf("unexpected note: %s", repo.note)
	}
}

func TestFlagSkippedItems_BlockedOnly(t *testing.T) {
	repo := &stubTxRepo{}
	updater := transaction.NewUpdater(repo)
	programID := uuid.New()

	if err := updater.FlagSkippedItems(context.Background(), uuid.New(), nil, []uuid.UUID{programID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.noteStatus != transaction.StatusNeedsManualReviewFull {
		t.Fatalf("expected needs_manual_review_full, got %s", repo.noteStatus)
	}

	var note struct {
		BlockedProgramIDs []string `json:"blocked_program_ids"`
	}
	if err := json.Unmarshal(repo.note, &note); err != nil {
		t.Fatalf("note not valid json: %v", err)
	}
	if len(note.BlockedProgramIDs) != 1 || note.BlockedProgramIDs[0] != programID.String() {
		t.Fatalf("unexpected note: %s", repo.note)
	}
}

// Both skip kinds in one cart land in one note: the capacity block sets the
// status and the missing-field list survives alongside it.
func TestFlagSkippedItems_MixedKeepsBothLists(t *testing.T) {
	repo := &stubTxRepo{}
	updater := transaction.NewUpdater(repo)
	programID := uuid.New()

	err := updater.FlagSkippedItems(context.Background(), uuid.New(), []string{"phone"}, []uuid.UUID{programID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.noteStatus != transaction.StatusNeedsManualReviewFull {
		t.Fatalf("capacity block should take precedence, got %s", repo.noteStatus)
	}

	var note struct {
		MissingFields     []string `json:"missing_fields"`
		BlockedProgramIDs []string `json:"blocked_program_ids"`
	}
	if err := json.Unmarshal(repo.note, &note); err != nil {
		t.Fatalf("note not valid json: %v", err)
	}
	if len(note.MissingFields) != 1 || note.MissingFields[0] != "phone" {
		t.Fatalf("missing fields lost from note: %s", repo.note)
	}
	if len(note.BlockedProgramIDs) != 1 || note.BlockedProgramIDs[0] != programID.String() {
		t.Fatalf("blocked ids lost from note: %s", repo.note)
	}
}
