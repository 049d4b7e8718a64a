package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRescueOperationTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	op := NewRescueOperation(7, now)

	if op.Status != RescuePending {
		t.Fatalf("new operation status = %s, want %s", op.Status, RescuePending)
	}
	if !op.Open() {
		t.Fatalf("pending operation should be open")
	}

	steps := []RescueStatus{RescueScoring, RescueDispatched, RescueCompleted}
	for _, next := range steps {
		now = now.Add(time.Minute)
		if err := op.TransitionTo(next, now); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if !op.UpdatedAt.Equal(now) {
			t.Fatalf("UpdatedAt not advanced on transition to %s", next)
		}
	}

	if op.Open() {
		t.Fatalf("completed operation should be closed")
	}
}

func TestRescueOperationRejectsSkippedStates(t *testing.T) {
	now := time.Now()
	op := NewRescueOperation(7, now)

	if err := op.TransitionTo(RescueDispatched, now); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("pending -> dispatched err = %v, want ErrIllegalTransition", err)
	}
	if err := op.TransitionTo(RescueCompleted, now); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("pending -> completed err = %v, want ErrIllegalTransition", err)
	}

	if err := op.TransitionTo(RescueScoring, now); err != nil {
		t.Fatalf("pending -> scoring: %v", err)
	}
	if err := op.TransitionTo(RescueFailed, now); err != nil {
		t.Fatalf("scoring -> failed: %v", err)
	}
	if err := op.TransitionTo(RescueScoring, now); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("failed is terminal, err = %v, want ErrIllegalTransition", err)
	}
}
