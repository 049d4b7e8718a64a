package domain

import (
	"fmt"
	"time"
)

// RescueStatus is the lifecycle of a rescue operation.
type RescueStatus string

const (
	RescuePending    RescueStatus = "pending"
	RescueScoring    RescueStatus = "scoring"
	RescueDispatched RescueStatus = "dispatched"
	RescueCompleted  RescueStatus = "completed"
	RescueFailed     RescueStatus = "failed"
)

// pending -> scoring -> dispatched -> {completed, failed}.
var rescueTransitions = map[RescueStatus][]RescueStatus{
	RescuePending:    {RescueScoring},
	RescueScoring:    {RescueDispatched, RescueFailed},
	RescueDispatched: {RescueCompleted, RescueFailed},
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s RescueStatus) CanTransition(next RescueStatus) bool {
	for _, t := range rescueTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// ScoredCandidate pairs a rescue candidate with its weighted score.
type ScoredCandidate struct {
	TruckID int
	Score   float64
}

// RescuerAssignment is one rescuer's share of a rescue plan: the cargo
// it absorbs and the route segment it drives.
type RescuerAssignment struct {
	TruckID        int
	AllocatedKg    float64
	LoadPercent    float64
	Stops          []RouteStop
	Route          *Route
	DistanceMeters int
	EtaSeconds     int
}

// RescuePlan is the committed outcome of rescue selection: one rescuer,
// or several with load split across them.
type RescuePlan struct {
	FailedTruckID     int
	RemainingDemandKg float64
	FailureReasons    []string
	Candidates        []ScoredCandidate
	Rescuers          []RescuerAssignment
	Split             bool
	EtaPreserved      bool
	CreatedAt         time.Time
}

// RescueOperation tracks a rescue from detection to completion.
type RescueOperation struct {
	ID            string
	FailedTruckID int
	Plan          *RescuePlan
	Status        RescueStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewRescueOperation(failedTruckID int, now time.Time) *RescueOperation {
	return &RescueOperation{
		ID:            fmt.Sprintf("rescue-%d-%d", failedTruckID, now.UnixNano()),
		FailedTruckID: failedTruckID,
		Status:        RescuePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TransitionTo advances the operation, rejecting edges outside
// pending -> scoring -> dispatched -> {completed, failed}.
func (op *RescueOperation) TransitionTo(next RescueStatus, now time.Time) error {
	if !op.Status.CanTransition(next) {
		return fmt.Errorf("rescue %s: %s -> %s: %w", op.ID, op.Status, next, ErrIllegalTransition)
	}
	op.Status = next
	op.UpdatedAt = now
	return nil
}

// Open reports whether the operation still holds its rescuers.
func (op *RescueOperation) Open() bool {
	return op.Status != RescueCompleted && op.Status != RescueFailed
}
