package program

import (
	"context"

	"github.com/google/uuid"
)

// Decision is the admission outcome for one enrollment attempt.
type Decision string

const (
	DecisionAdmit    Decision = "admit"
	DecisionWaitlist Decision = "waitlist"
	DecisionBlock    Decision = "block"
)

// EnrollmentCounter provides the derived admission state the resolver needs.
type EnrollmentCounter interface {
	CountActive(ctx context.Context, programID uuid.UUID) (int, error)
	HasActive(ctx context.Context, userID, programID uuid.UUID) (bool, error)
	HasWaitlistAccepted(ctx context.Context, userID, programID uuid.UUID) (bool, error)
}

// Resolver decides whether a buyer may be admitted to a program.
//
// The capacity count is a derived read with no lock held across the
// read-then-write pair, so two concurrent purchases for the last seat can
// both be admitted. This check is advisory; a hard guarantee requires a
// storage-level constraint around count-and-insert.
type Resolver struct {
	programs    Repository
	enrollments EnrollmentCounter
}

// NewResolver creates the capacity and waitlist resolver
func NewResolver(programs Repository, enrollments EnrollmentCounter) *Resolver {
	return &Resolver{programs: programs, enrollments: enrollments}
}

// Resolve fetches the program and current admission state and returns the
// decision along with the program row.
func (r *Resolver) Resolve(ctx context.Context, userID, programID uuid.UUID) (Decision, *Program, error) {
	p, err := r.programs.GetByID(ctx, programID)
	if err != nil {
		return "", nil, err
	}

	accepted, err := r.enrollments.HasWaitlistAccepted(ctx, userID, programID)
	if err != nil {
		return "", nil, err
	}

	active, err := r.enrollments.HasActive(ctx, userID, programID)
	if err != nil {
		return "", nil, err
	}

	activeCount, err := r.enrollments.CountActive(ctx, programID)
	if err != nil {
		return "", nil, err
	}

	return Decide(p, activeCount, accepted || active), p, nil
}

// Decide applies the admission rules in order:
//
//  1. A prior admission (an existing active row, or a waitlist acceptance)
//     admits unconditionally. The active count includes the buyer's own
//     row, so without this a redelivered event against a now-full program
//     would demote or block the buyer it already admitted.
//  2. Not full (no override, and either no capacity limit or seats left)
//     admits.
//  3. Full with the waitlist enabled waitlists.
//  4. Full without a waitlist blocks.
func Decide(p *Program, activeCount int, hasPriorAdmission bool) Decision {
	if hasPriorAdmission {
		return DecisionAdmit
	}

	isFull := p.ManualFullOverride || (p.HasCapacityLimit() && int64(activeCount) >= p.Capacity.Int64)
	if !isFull {
		return DecisionAdmit
	}

	if p.WaitlistEnabled && p.HasCapacityLimit() {
		return DecisionWaitlist
	}

	return DecisionBlock
}
