package classpass_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/domain/classpass"
)

// memRepo mimics the unique constraint on checkout_session_id and the
// append-only ledger.
type memRepo struct {
	purchases map[string]*classpass.Purchase
	ledger    []*classpass.LedgerEntry
}

func newMemRepo() *memRepo {
	return &memRepo{purchases: map[string]*classpass.Purchase{}}
}

func (m *memRepo) InsertPurchase(ctx context.Context, p *classpass.Purchase) (bool, error) {
	if _, exists := m.purchases[p.CheckoutSessionID]; exists {
		return false, nil
	}
	cp := *p
	m.purchases[p.CheckoutSessionID] = &cp
	return true, nil
}

func (m *memRepo) GetPurchaseBySessionID(ctx context.Context, sessionID string) (*classpass.Purchase, error) {
	p, ok := m.purchases[sessionID]
	if !ok {
		return nil, classpass.ErrPurchaseNotFound
	}
	return p, nil
}

func (m *memRepo) AppendLedger(ctx context.Context, e *classpass.LedgerEntry) error {
	ce := *e
	m.ledger = append(m.ledger, &ce)
	return nil
}

func (m *memRepo) HasLedgerForPurchase(ctx context.Context, purchaseID uuid.UUID, reason classpass.LedgerReason) (bool, error) {
	for _, e := range m.ledger {
		if e.PurchaseID.Valid && e.PurchaseID.UUID == purchaseID && e.Reason == reason {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) SumLedger(ctx context.Context, userID, studioID uuid.UUID) (int, error) {
	sum := 0
	for _, e := range m.ledger {
		if e.UserID == userID && e.StudioID == studioID {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (m *memRepo) ListLedger(ctx context.Context, userID, studioID uuid.UUID, limit, offset int) ([]*classpass.LedgerEntry, error) {
	return m.ledger, nil
}

func grantReq(sessionID string) classpass.GrantRequest {
	return classpass.GrantRequest{
		UserID:            uuid.New(),
		StudioID:          uuid.New(),
		ProductID:         "pass_10",
		CheckoutSessionID: sessionID,
		Credits:           10,
		ExpirationMonths:  12,
	}
}

func TestGrant_RecordsPurchaseAndLedger(t *testing.T) {
	repo := newMemRepo()
	granter := classpass.NewGranter(repo)

	req := grantReq("cs_100")
	p, err := granter.Grant(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.CreditsTotal != 10 {
		t.Fatalf("expected 10 credits, got %d", p.CreditsTotal)
	}
	if !p.ExpiresAt.Valid {
		t.Fatal("expected expiry to be set")
	}
	wantExpiry := time.Now().AddDate(0, 12, 0)
	if diff := p.ExpiresAt.Time.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected expiry near %v, got %v", wantExpiry, p.ExpiresAt.Time)
	}

	if len(repo.ledger) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(repo.ledger))
	}
	if repo.ledger[0].Delta != 10 || repo.ledger[0].Reason != classpass.ReasonPurchase {
		t.Fatalf("unexpected ledger entry: %+v", repo.ledger[0])
	}

	balance, err := granter.Balance(context.Background(), req.UserID, req.StudioID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 10 {
		t.Fatalf("expected balance 10, got %d", balance)
	}
}

func TestGrant_DoubleDeliverySingleGrant(t *testing.T) {
	repo := newMemRepo()
	granter := classpass.NewGranter(repo)

	req := grantReq("cs_200")
	if _, err := granter.Grant(context.Background(), req); err != nil {
		t.Fatalf("first grant: %v", err)
	}
	if _, err := granter.Grant(context.Background(), req); err != nil {
		t.Fatalf("second grant: %v", err)
	}

	if len(repo.purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(repo.purchases))
	}
	if len(repo.ledger) != 1 {
		t.Fatalf("expected 1 ledger entry after replay, got %d", len(repo.ledger))
	}
}

func TestGrant_NonExpiring(t *testing.T) {
	repo := newMemRepo()
	granter := classpass.NewGranter(repo)

	req := grantReq("cs_300")
	req.ExpirationMonths = 0
	p, err := granter.Grant(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ExpiresAt.Valid {
		t.Fatal("expected no expiry for 0 months")
	}
}

func TestGrant_ZeroCreditsNoLedgerEntry(t *testing.T) {
	repo := newMemRepo()
	granter := classpass.NewGranter(repo)

	req := grantReq("cs_400")
	req.Credits = 0
	p, err := granter.Grant(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected purchase row")
	}
	if len(repo.ledger) != 0 {
		t.Fatalf("expected no ledger entry for zero credits, got %d", len(repo.ledger))
	}
}

func TestGrant_NegativeCreditsRejected(t *testing.T) {
	granter := classpass.NewGranter(newMemRepo())

	req := grantReq("cs_500")
	req.Credits = -1
	if _, err := granter.Grant(context.Background(), req); !errors.Is(err, classpass.ErrInvalidCredits) {
		t.Fatalf("expected ErrInvalidCredits, got %v", err)
	}
}

// A crash after the purchase insert but before the ledger append leaves a
// purchase with no grant; replaying the event must finish the job without
// double-granting.
func TestGrant_ResumesAfterPartialWrite(t *testing.T) {
	repo := newMemRepo()
	granter := classpass.NewGranter(repo)

	req := grantReq("cs_600")
	p := &classpass.Purchase{
		ID:                uuid.New(),
		UserID:            req.UserID,
		StudioID:          req.StudioID,
		ProductID:         req.ProductID,
		CheckoutSessionID: req.CheckoutSessionID,
		CreditsTotal:      req.Credits,
		Status:            classpass.PurchaseStatusActive,
	}
	if _, err := repo.InsertPurchase(context.Background(), p); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	if _, err := granter.Grant(context.Background(), req); err != nil {
		t.Fatalf("replay grant: %v", err)
	}
	if len(repo.ledger) != 1 {
		t.Fatalf("expected ledger entry after replay, got %d", len(repo.ledger))
	}
	if repo.ledger[0].PurchaseID.UUID != p.ID {
		t.Fatal("ledger entry should reference the original purchase")
	}
}
