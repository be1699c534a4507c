package webhook

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/validator"
)

// EventCheckoutCompleted is the only lifecycle type this engine reconciles.
// Other types (catalog sync, refund lifecycle) are acknowledged untouched.
const EventCheckoutCompleted = "checkout.session.completed"

// Event is one payment-lifecycle notification from the checkout provider.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type" validate:"required"`
	Data EventData `json:"data"`
}

// EventData wraps the event payload object.
type EventData struct {
	Object Session `json:"object"`
}

// Session is the checkout session carried by a completion event.
type Session struct {
	ID                 string   `json:"id" validate:"required"`
	PaymentRef         string   `json:"payment_ref"`
	ConnectedAccountID string   `json:"account_id"`
	Metadata           Metadata `json:"metadata"`
}

// Metadata is the free-form map the checkout provider echoes back.
// Values are always strings on the wire; ParsePurchase converts it into a
// typed purchase variant before it reaches the orchestrator.
type Metadata struct {
	UserID             string `json:"user_id,omitempty"`
	UserProfileID      string `json:"user_profile_id,omitempty"`
	CartID             string `json:"cart_id,omitempty"`
	ProgramID          string `json:"program_id,omitempty"`
	StudioID           string `json:"studio_id,omitempty"`
	PriceCents         string `json:"price_cents,omitempty"`
	ClassPassProductID string `json:"class_pass_product_id,omitempty"`
	CreditCount        string `json:"credit_count,omitempty"`
	ExpirationMonths   string `json:"expiration_months,omitempty"`
}

// Purchase is the tagged union of purchase shapes, discriminated by which
// metadata keys are present.
type Purchase interface {
	purchaseShape() string
}

// ClassPassPurchase is a prepaid credit pack purchase.
type ClassPassPurchase struct {
	ProductID        string
	StudioID         uuid.UUID
	Credits          int
	ExpirationMonths int // 0 = non-expiring
}

// CartPurchase is a multi-item checkout of program enrollments.
type CartPurchase struct {
	CartID uuid.UUID
}

// ProgramPurchase is a single-program enrollment checkout.
type ProgramPurchase struct {
	ProgramID  uuid.UUID
	StudioID   uuid.UUID
	PriceCents int64
}

func (ClassPassPurchase) purchaseShape() string { return "class_pass" }
func (CartPurchase) purchaseShape() string      { return "cart" }
func (ProgramPurchase) purchaseShape() string   { return "program" }

// ErrNoPurchaseShape is returned when the metadata carries none of the
// recognized purchase discriminators.
var ErrNoPurchaseShape = fmt.Errorf("metadata carries no purchase shape")

type classPassMeta struct {
	ProductID        string `json:"class_pass_product_id" validate:"required"`
	StudioID         string `json:"studio_id" validate:"required,uuid4"`
	CreditCount      string `json:"credit_count" validate:"required,numeric"`
	ExpirationMonths string `json:"expiration_months" validate:"omitempty,numeric"`
}

// ParsePurchase discriminates and validates the metadata into a typed
// purchase variant. Precedence when several keys are present follows the
// reconciliation branches: credit pack, then cart, then single program.
func (m Metadata) ParsePurchase() (Purchase, error) {
	switch {
	case m.ClassPassProductID != "":
		meta := classPassMeta{
			ProductID:        m.ClassPassProductID,
			StudioID:         m.StudioID,
			CreditCount:      m.CreditCount,
			ExpirationMonths: m.ExpirationMonths,
		}
		if errs := validator.Validate(meta); errs != nil {
			return nil, fmt.Errorf("invalid class pass metadata: %v", errs)
		}
		studioID, err := uuid.Parse(m.StudioID)
		if err != nil {
			return nil, fmt.Errorf("invalid class pass studio_id: %w", err)
		}
		credits, err := strconv.Atoi(m.CreditCount)
		if err != nil || credits < 0 {
			return nil, fmt.Errorf("invalid credit_count %q", m.CreditCount)
		}
		months := 0
		if m.ExpirationMonths != "" {
			months, err = strconv.Atoi(m.ExpirationMonths)
			if err != nil || months < 0 {
				return nil, fmt.Errorf("invalid expiration_months %q", m.ExpirationMonths)
			}
		}
		return ClassPassPurchase{
			ProductID:        m.ClassPassProductID,
			StudioID:         studioID,
			Credits:          credits,
			ExpirationMonths: months,
		}, nil

	case m.CartID != "":
		cartID, err := uuid.Parse(m.CartID)
		if err != nil {
			return nil, fmt.Errorf("invalid cart_id: %w", err)
		}
		return CartPurchase{CartID: cartID}, nil

	case m.ProgramID != "":
		programID, err := uuid.Parse(m.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("invalid program_id: %w", err)
		}
		studioID := uuid.Nil
		if m.StudioID != "" {
			studioID, err = uuid.Parse(m.StudioID)
			if err != nil {
				return nil, fmt.Errorf("invalid studio_id: %w", err)
			}
		}
		var price int64
		if m.PriceCents != "" {
			price, err = strconv.ParseInt(m.PriceCents, 10, 64)
			if err != nil || price < 0 {
				return nil, fmt.Errorf("invalid price_cents %q", m.PriceCents)
			}
		}
		return ProgramPurchase{ProgramID: programID, StudioID: studioID, PriceCents: price}, nil
	}

	return nil, ErrNoPurchaseShape
}
