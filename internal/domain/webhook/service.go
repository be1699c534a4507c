package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studiora/studiora-api/internal/domain/cart"
	"github.com/studiora/studiora-api/internal/domain/classpass"
	"github.com/studiora/studiora-api/internal/domain/enrollment"
	"github.com/studiora/studiora-api/internal/domain/profile"
	"github.com/studiora/studiora-api/internal/domain/transaction"
	"github.com/studiora/studiora-api/internal/pkg/checkout"
	"github.com/studiora/studiora-api/internal/pkg/notify"
)

// TransactionUpdater records payment outcomes on transactions.
type TransactionUpdater interface {
	RecordConfirmation(ctx context.Context, sessionID, chargeID string) (*transaction.Transaction, error)
	FlagSkippedItems(ctx context.Context, id uuid.UUID, missingFields []string, blockedProgramIDs []uuid.UUID) error
}

// ProfileResolver builds buyer snapshots and resolves profile indirections.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) profile.Snapshot
	UserIDByProfileID(ctx context.Context, profileID uuid.UUID) (uuid.UUID, error)
}

// EnrollmentReconciler reconciles one enrollment attempt.
type EnrollmentReconciler interface {
	Reconcile(ctx context.Context, item enrollment.Item) enrollment.Outcome
}

// CreditGranter records class pass purchases.
type CreditGranter interface {
	Grant(ctx context.Context, req classpass.GrantRequest) (*classpass.Purchase, error)
}

// CartStore reads carts and completes them after reconciliation.
type CartStore interface {
	ListItems(ctx context.Context, cartID uuid.UUID) ([]*cart.Item, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

// DetailFetcher enriches a confirmed payment with provider-side details.
type DetailFetcher interface {
	SessionDetails(ctx context.Context, paymentRef, connectedAccountID string) (*checkout.SessionDetails, error)
}

// Notifier dispatches best-effort enrollment notifications.
type Notifier interface {
	EnrollmentCreated(ctx context.Context, p notify.EnrollmentCreatedPayload) error
}

const (
	enrichTimeout = 5 * time.Second
	notifyTimeout = 5 * time.Second
)

// Orchestrator routes one verified checkout event through reconciliation.
// It is safe to invoke repeatedly for the same logical event: every write
// it triggers sits behind a storage-level uniqueness guarantee.
type Orchestrator struct {
	transactions TransactionUpdater
	profiles     ProfileResolver
	enrollments  EnrollmentReconciler
	credits      CreditGranter
	carts        CartStore
	details      DetailFetcher
	notifier     Notifier
}

// NewOrchestrator creates the reconciliation orchestrator. details and
// notifier may be nil when the corresponding collaborator is not
// configured.
func NewOrchestrator(
	transactions TransactionUpdater,
	profiles ProfileResolver,
	enrollments EnrollmentReconciler,
	credits CreditGranter,
	carts CartStore,
	details DetailFetcher,
	notifier Notifier,
) *Orchestrator {
	return &Orchestrator{
		transactions: transactions,
		profiles:     profiles,
		enrollments:  enrollments,
		credits:      credits,
		carts:        carts,
		details:      details,
		notifier:     notifier,
	}
}

// HandleEvent reconciles one checkout-completion event. A returned error
// means nothing meaningful was recorded and the transport should retry;
// per-item problems are recorded on the transaction instead of returned.
//
// complete reports whether every item reached a terminal state. When false
// the event must stay eligible for redelivery even though it was
// acknowledged, so the caller must not mark it as seen.
func (o *Orchestrator) HandleEvent(ctx context.Context, evt *Event) (complete bool, err error) {
	sess := evt.Data.Object

	// Enrichment is best-effort: a paying customer is never held up by the
	// provider's detail API.
	chargeID := ""
	if o.details != nil && sess.PaymentRef != "" {
		dctx, cancel := context.WithTimeout(ctx, enrichTimeout)
		details, err := o.details.SessionDetails(dctx, sess.PaymentRef, sess.ConnectedAccountID)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("checkout detail lookup failed, continuing without charge id")
		} else if details != nil {
			chargeID = details.ChargeID
		}
	}

	tx, err := o.transactions.RecordConfirmation(ctx, sess.ID, chargeID)
	if err != nil {
		return false, err
	}

	userID, ok := o.resolveUserID(ctx, tx, sess.Metadata)
	if !ok {
		// Unrecoverable mapping gap: acknowledge so the transport does not
		// retry forever.
		log.Warn().Str("session_id", sess.ID).Msg("could not resolve buyer identity, skipping reconciliation")
		return true, nil
	}

	snapshot := o.profiles.Resolve(ctx, userID)

	purchase, err := sess.Metadata.ParsePurchase()
	if err != nil {
		if !errors.Is(err, ErrNoPurchaseShape) {
			log.Error().Err(err).Str("session_id", sess.ID).Msg("unreconcilable purchase metadata")
		}
		return true, nil
	}

	switch p := purchase.(type) {
	case ClassPassPurchase:
		if err := o.handleClassPass(ctx, userID, sess.ID, p); err != nil {
			return false, err
		}
	case CartPurchase:
		if failed := o.handleCart(ctx, tx, userID, snapshot, p); failed {
			return false, nil
		}
	case ProgramPurchase:
		item := enrollment.Item{
			UserID:     userID,
			ProgramID:  p.ProgramID,
			StudioID:   p.StudioID,
			Snapshot:   snapshot,
			PriceCents: p.PriceCents,
		}
		if failed := o.finishEnrollments(ctx, tx, userID, snapshot, []enrollment.Outcome{o.enrollments.Reconcile(ctx, item)}); failed {
			return false, nil
		}
	}

	return true, nil
}

func (o *Orchestrator) resolveUserID(ctx context.Context, tx *transaction.Transaction, m Metadata) (uuid.UUID, bool) {
	if tx != nil && tx.UserID.Valid && tx.UserID.UUID != uuid.Nil {
		return tx.UserID.UUID, true
	}
	if m.UserID != "" {
		if id, err := uuid.Parse(m.UserID); err == nil {
			return id, true
		}
	}
	if m.UserProfileID != "" {
		profileID, err := uuid.Parse(m.UserProfileID)
		if err != nil {
			return uuid.Nil, false
		}
		id, err := o.profiles.UserIDByProfileID(ctx, profileID)
		if err != nil {
			log.Warn().Err(err).Str("profile_id", m.UserProfileID).Msg("profile indirection lookup failed")
			return uuid.Nil, false
		}
		return id, true
	}
	return uuid.Nil, false
}

func (o *Orchestrator) handleClassPass(ctx context.Context, userID uuid.UUID, sessionID string, p ClassPassPurchase) error {
	_, err := o.credits.Grant(ctx, classpass.GrantRequest{
		UserID:            userID,
		StudioID:          p.StudioID,
		ProductID:         p.ProductID,
		CheckoutSessionID: sessionID,
		Credits:           p.Credits,
		ExpirationMonths:  p.ExpirationMonths,
	})
	if err != nil {
		// Retry is safe: the purchase insert and ledger append are both
		// idempotent under replay.
		log.Error().Err(err).Str("session_id", sessionID).Msg("class pass grant failed")
		return err
	}
	return nil
}

// handleCart reconciles every item in the cart. Returns true when any item
// failed and the cart was left active for a later replay.
func (o *Orchestrator) handleCart(ctx context.Context, tx *transaction.Transaction, userID uuid.UUID, snapshot profile.Snapshot, p CartPurchase) bool {
	items, err := o.carts.ListItems(ctx, p.CartID)
	if err != nil {
		log.Error().Err(err).Str("cart_id", p.CartID.String()).Msg("failed to load cart items")
		return true
	}
	if len(items) == 0 {
		log.Warn().Str("cart_id", p.CartID.String()).Msg("cart has no items")
		return false
	}

	outcomes := make([]enrollment.Outcome, 0, len(items))
	for _, item := range items {
		outcomes = append(outcomes, o.enrollments.Reconcile(ctx, enrollment.Item{
			UserID:        userID,
			ProgramID:     item.ProgramID,
			StudioID:      item.StudioID,
			Snapshot:      snapshot,
			LessonDetails: item.LessonDetails,
			PriceCents:    item.PriceCents,
		}))
	}

	failed := o.finishEnrollments(ctx, tx, userID, snapshot, outcomes)
	if failed {
		// Leave the cart active; a later replay can finish the remaining
		// items without disturbing the ones already upserted.
		return true
	}
	if err := o.carts.MarkCompleted(ctx, p.CartID); err != nil {
		log.Error().Err(err).Str("cart_id", p.CartID.String()).Msg("failed to complete cart")
	}
	return false
}

// finishEnrollments aggregates per-item outcomes, records skip reasons on
// the transaction, and dispatches notifications for newly admitted
// enrollments. Returns true when any item failed outright.
func (o *Orchestrator) finishEnrollments(ctx context.Context, tx *transaction.Transaction, userID uuid.UUID, snapshot profile.Snapshot, outcomes []enrollment.Outcome) bool {
	var (
		missingFields []string
		blockedIDs    []uuid.UUID
		failed        bool
	)
	seenMissing := map[string]bool{}

	for _, out := range outcomes {
		switch out.Kind {
		case enrollment.OutcomeAdmitted:
			o.dispatchNotification(out, userID, snapshot)
		case enrollment.OutcomeProfileIncomplete:
			for _, f := range out.MissingFields {
				if !seenMissing[f] {
					seenMissing[f] = true
					missingFields = append(missingFields, f)
				}
			}
		case enrollment.OutcomeBlocked:
			blockedIDs = append(blockedIDs, out.ProgramID)
		case enrollment.OutcomeFailed:
			failed = true
			log.Error().Err(out.Err).Str("program_id", out.ProgramID.String()).Msg("enrollment reconciliation failed")
		}
	}

	if tx == nil {
		if len(missingFields) > 0 || len(blockedIDs) > 0 {
			log.Warn().Msg("skip reasons not recorded: no transaction for session")
		}
		return failed
	}

	if len(missingFields) > 0 || len(blockedIDs) > 0 {
		if err := o.transactions.FlagSkippedItems(ctx, tx.ID, missingFields, blockedIDs); err != nil {
			log.Error().Err(err).Str("transaction_id", tx.ID.String()).Msg("failed to flag skipped items")
		}
	}

	return failed
}

func (o *Orchestrator) dispatchNotification(out enrollment.Outcome, userID uuid.UUID, snapshot profile.Snapshot) {
	if o.notifier == nil {
		return
	}
	payload := notify.EnrollmentCreatedPayload{
		StudioID:     out.StudioID,
		ProgramID:    out.ProgramID,
		ProgramTitle: out.ProgramTitle,
		EnrollmentID: out.EnrollmentID,
		UserID:       userID,
		Snapshot:     snapshot.Fields(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := o.notifier.EnrollmentCreated(ctx, payload); err != nil {
			log.Warn().Err(err).Str("enrollment_id", out.EnrollmentID.String()).Msg("enrollment notification failed")
		}
	}()
}
