package program_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/domain/program"
)

func capacity(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: true}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		program     program.Program
		activeCount int
		accepted    bool
		want        program.Decision
	}{
		{
			name:        "unlimited capacity admits",
			program:     program.Program{},
			activeCount: 1000,
			want:        program.DecisionAdmit,
		},
		{
			name:        "seats left admits",
			program:     program.Program{Capacity: capacity(10)},
			activeCount: 9,
			want:        program.DecisionAdmit,
		},
		{
			name:        "full without waitlist blocks",
			program:     program.Program{Capacity: capacity(1)},
			activeCount: 1,
			want:        program.DecisionBlock,
		},
		{
			name:        "full with waitlist waitlists",
			program:     program.Program{Capacity: capacity(1), WaitlistEnabled: true},
			activeCount: 1,
			want:        program.DecisionWaitlist,
		},
		{
			name:        "over capacity with waitlist waitlists",
			program:     program.Program{Capacity: capacity(1), WaitlistEnabled: true},
			activeCount: 5,
			want:        program.DecisionWaitlist,
		},
		{
			name:        "manual override blocks regardless of count",
			program:     program.Program{Capacity: capacity(100), ManualFullOverride: true},
			activeCount: 0,
			want:        program.DecisionBlock,
		},
		{
			name:        "manual override with waitlist waitlists",
			program:     program.Program{Capacity: capacity(100), WaitlistEnabled: true, ManualFullOverride: true},
			activeCount: 0,
			want:        program.DecisionWaitlist,
		},
		{
			name:        "manual override without capacity limit blocks",
			program:     program.Program{WaitlistEnabled: true, ManualFullOverride: true},
			activeCount: 0,
			want:        program.DecisionBlock,
		},
		{
			name:        "waitlist acceptance admits past capacity",
			program:     program.Program{Capacity: capacity(1)},
			activeCount: 1,
			accepted:    true,
			want:        program.DecisionAdmit,
		},
		{
			name:        "waitlist acceptance admits past manual override",
			program:     program.Program{Capacity: capacity(1), ManualFullOverride: true},
			activeCount: 1,
			accepted:    true,
			want:        program.DecisionAdmit,
		},
		{
			name:        "zero capacity means unlimited",
			program:     program.Program{Capacity: capacity(0)},
			activeCount: 50,
			want:        program.DecisionAdmit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := program.Decide(&tt.program, tt.activeCount, tt.accepted)
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

type stubProgramRepo struct {
	programs map[uuid.UUID]*program.Program
}

func (s *stubProgramRepo) GetByID(ctx context.Context, id uuid.UUID) (*program.Program, error) {
	p, ok := s.programs[id]
	if !ok {
		return nil, program.ErrProgramNotFound
	}
	return p, nil
}

type stubCounter struct {
	active    int
	ownActive bool
	accepted  bool
}

func (s *stubCounter) CountActive(ctx context.Context, programID uuid.UUID) (int, error) {
	return s.active, nil
}

func (s *stubCounter) HasActive(ctx context.Context, userID, programID uuid.UUID) (bool, error) {
	return s.ownActive, nil
}

func (s *stubCounter) HasWaitlistAccepted(ctx context.Context, userID, programID uuid.UUID) (bool, error) {
	return s.accepted, nil
}

func TestResolver_Resolve(t *testing.T) {
	programID := uuid.New()
	repo := &stubProgramRepo{programs: map[uuid.UUID]*program.Program{
		programID: {ID: programID, Title: "Morning Yoga", Capacity: capacity(2), WaitlistEnabled: true},
	}}

	resolver := program.NewResolver(repo, &stubCounter{active: 2})

	decision, p, err := resolver.Resolve(context.Background(), uuid.New(), programID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != program.DecisionWaitlist {
		t.Fatalf("expected waitlist, got %s", decision)
	}
	if p.Title != "Morning Yoga" {
		t.Fatalf("expected program row to be returned, got %+v", p)
	}
}

// A buyer who already holds an active row keeps their seat even when the
// count says the program is full; the count includes their own row.
func TestResolver_Resolve_ExistingActiveRowAdmits(t *testing.T) {
	programID := uuid.New()
	repo := &stubProgramRepo{programs: map[uuid.UUID]*program.Program{
		programID: {ID: programID, Capacity: capacity(1), WaitlistEnabled: true},
	}}

	resolver := program.NewResolver(repo, &stubCounter{active: 1, ownActive: true})

	decision, _, err := resolver.Resolve(context.Background(), uuid.New(), programID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != program.DecisionAdmit {
		t.Fatalf("expected admit, got %s", decision)
	}
}

func TestResolver_Resolve_UnknownProgram(t *testing.T) {
	resolver := program.NewResolver(&stubProgramRepo{programs: map[uuid.UUID]*program.Program{}}, &stubCounter{})

	_, _, err := resolver.Resolve(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected error for unknown program")
	}
}
