package webhook_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/domain/webhook"
)

func TestParsePurchase_ClassPass(t *testing.T) {
	studioID := uuid.New()
	m := webhook.Metadata{
		ClassPassProductID: "pass_10",
		StudioID:           studioID.String(),
		CreditCount:        "10",
		ExpirationMonths:   "12",
	}

	p, err := m.ParsePurchase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp, ok := p.(webhook.ClassPassPurchase)
	if !ok {
		t.Fatalf("expected ClassPassPurchase, got %T", p)
	}
	if cp.ProductID != "pass_10" || cp.StudioID != studioID || cp.Credits != 10 || cp.ExpirationMonths != 12 {
		t.Fatalf("unexpected purchase: %+v", cp)
	}
}

func TestParsePurchase_ClassPassWithoutExpiry(t *testing.T) {
	m := webhook.Metadata{
		ClassPassProductID: "pass_5",
		StudioID:           uuid.New().String(),
		CreditCount:        "5",
	}

	p, err := m.ParsePurchase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.(webhook.ClassPassPurchase).ExpirationMonths != 0 {
		t.Fatal("expected non-expiring pass")
	}
}

func TestParsePurchase_ClassPassInvalidMetadata(t *testing.T) {
	cases := []webhook.Metadata{
		{ClassPassProductID: "pass_10"},                                                                        // missing studio and count
		{ClassPassProductID: "pass_10", StudioID: "not-a-uuid", CreditCount: "10"},                             // bad studio id
		{ClassPassProductID: "pass_10", StudioID: uuid.New().String(), CreditCount: "ten"},                     // non-numeric count
		{ClassPassProductID: "pass_10", StudioID: uuid.New().String(), CreditCount: "10", ExpirationMonths: "x"}, // bad expiry
	}
	for i, m := range cases {
		if _, err := m.ParsePurchase(); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, m)
		}
	}
}

func TestParsePurchase_Cart(t *testing.T) {
	cartID := uuid.New()
	p, err := webhook.Metadata{CartID: cartID.String()}.ParsePurchase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.(webhook.CartPurchase).CartID != cartID {
		t.Fatalf("unexpected cart purchase: %+v", p)
	}
}

func TestParsePurchase_Program(t *testing.T) {
	programID := uuid.New()
	studioID := uuid.New()
	p, err := webhook.Metadata{
		ProgramID:  programID.String(),
		StudioID:   studioID.String(),
		PriceCents: "25000",
	}.ParsePurchase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pp := p.(webhook.ProgramPurchase)
	if pp.ProgramID != programID || pp.StudioID != studioID || pp.PriceCents != 25000 {
		t.Fatalf("unexpected program purchase: %+v", pp)
	}
}

func TestParsePurchase_Precedence(t *testing.T) {
	m := webhook.Metadata{
		ClassPassProductID: "pass_10",
		StudioID:           uuid.New().String(),
		CreditCount:        "10",
		CartID:             uuid.New().String(),
		ProgramID:          uuid.New().String(),
	}
	p, err := m.ParsePurchase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(webhook.ClassPassPurchase); !ok {
		t.Fatalf("class pass should win precedence, got %T", p)
	}

	m.ClassPassProductID = ""
	m.CreditCount = ""
	p, err = m.ParsePurchase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(webhook.CartPurchase); !ok {
		t.Fatalf("cart should win over program, got %T", p)
	}
}

func TestParsePurchase_NoShape(t *testing.T) {
	_, err := webhook.Metadata{UserID: uuid.New().String()}.ParsePurchase()
	if !errors.Is(err, webhook.ErrNoPurchaseShape) {
		t.Fatalf("expected ErrNoPurchaseShape, got %v", err)
	}
}
