package enrollment

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/studiora/studiora-api/internal/domain/profile"
	"github.com/studiora/studiora-api/internal/domain/program"
	"github.com/studiora/studiora-api/internal/pkg/jsonx"
)

// Item is one enrollment attempt extracted from a confirmed purchase.
type Item struct {
	UserID        uuid.UUID
	ProgramID     uuid.UUID
	StudioID      uuid.UUID
	Snapshot      profile.Snapshot
	LessonDetails jsonx.RawMessage
	PriceCents    int64
}

// OutcomeKind classifies the result of reconciling one item.
type OutcomeKind string

const (
	OutcomeAdmitted          OutcomeKind = "admitted"
	OutcomeWaitlisted        OutcomeKind = "waitlisted"
	OutcomeProfileIncomplete OutcomeKind = "profile_incomplete"
	OutcomeBlocked           OutcomeKind = "blocked"
	OutcomeFailed            OutcomeKind = "failed"
)

// Outcome reports what happened to one item. The orchestrator aggregates
// outcomes across a cart instead of relying on error propagation, so one
// item's failure never aborts its siblings.
type Outcome struct {
	Kind          OutcomeKind
	ProgramID     uuid.UUID
	StudioID      uuid.UUID
	ProgramTitle  string
	EnrollmentID  uuid.UUID
	MissingFields []string
	Err           error
}

// Reconciler converts admission decisions into durable enrollment rows.
type Reconciler struct {
	repo     Repository
	resolver *program.Resolver
}

// NewReconciler creates the enrollment reconciler
func NewReconciler(repo Repository, resolver *program.Resolver) *Reconciler {
	return &Reconciler{repo: repo, resolver: resolver}
}

// Reconcile upserts at most one enrollment row for the item.
//
// The profile gate runs first: enrolling without mandatory contact data
// would need a repair pass the rest of the system cannot perform, so the
// item is skipped and the missing fields reported. A blocked decision
// writes no row at all; the orchestrator records the program id on the
// transaction for manual review.
func (r *Reconciler) Reconcile(ctx context.Context, item Item) Outcome {
	if missing := item.Snapshot.MissingRequired(); len(missing) > 0 {
		return Outcome{
			Kind:          OutcomeProfileIncomplete,
			ProgramID:     item.ProgramID,
			MissingFields: missing,
		}
	}

	decision, prog, err := r.resolver.Resolve(ctx, item.UserID, item.ProgramID)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, ProgramID: item.ProgramID, Err: err}
	}

	if decision == program.DecisionBlock {
		log.Info().
			Str("user_id", item.UserID.String()).
			Str("program_id", item.ProgramID.String()).
			Msg("program full without waitlist, enrollment blocked")
		return Outcome{Kind: OutcomeBlocked, ProgramID: item.ProgramID, ProgramTitle: prog.Title}
	}

	status := StatusActive
	kind := OutcomeAdmitted
	if decision == program.DecisionWaitlist {
		status = StatusWaitlisted
		kind = OutcomeWaitlisted
	}

	snapshot, err := json.Marshal(item.Snapshot)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, ProgramID: item.ProgramID, Err: err}
	}
	formData, err := json.Marshal(map[string]interface{}{
		"lesson_details": json.RawMessage(normalizeRaw(item.LessonDetails)),
		"price_cents":    item.PriceCents,
	})
	if err != nil {
		return Outcome{Kind: OutcomeFailed, ProgramID: item.ProgramID, Err: err}
	}

	e := &Enrollment{
		ID:              uuid.New(),
		UserID:          item.UserID,
		ProgramID:       item.ProgramID,
		StudioID:        item.StudioID,
		Status:          status,
		ProfileSnapshot: snapshot,
		FormData:        formData,
	}
	if err := r.repo.Upsert(ctx, e); err != nil {
		return Outcome{Kind: OutcomeFailed, ProgramID: item.ProgramID, Err: err}
	}

	return Outcome{
		Kind:         kind,
		ProgramID:    item.ProgramID,
		StudioID:     item.StudioID,
		ProgramTitle: prog.Title,
		EnrollmentID: e.ID,
	}
}

// ListByProgram returns enrollments for a program
func (r *Reconciler) ListByProgram(ctx context.Context, programID uuid.UUID, limit, offset int) ([]*Enrollment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return r.repo.ListByProgram(ctx, programID, limit, offset)
}

func normalizeRaw(raw jsonx.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
