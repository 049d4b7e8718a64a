package domain

import "fmt"

// TruckStatus is the operational lifecycle state of a truck.
type TruckStatus string

const (
	TruckOperational TruckStatus = "operational"
	TruckFailed      TruckStatus = "failed"
	TruckRescuing    TruckStatus = "rescuing"
)

// Allowed lifecycle edges: operational -> failed -> rescuing -> operational.
var truckTransitions = map[TruckStatus]TruckStatus{
	TruckOperational: TruckFailed,
	TruckFailed:      TruckRescuing,
	TruckRescuing:    TruckOperational,
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s TruckStatus) CanTransition(next TruckStatus) bool {
	return truckTransitions[s] == next
}

// Truck is the fleet aggregate: a capacity- and speed-constrained vehicle
// with cold-chain telemetry and a historical reliability score.
type Truck struct {
	TruckID              int
	Start                Coordinates
	Position             Coordinates
	CapacityKg           float64
	SpeedKmh             float64
	LoadKg               float64
	Status               TruckStatus
	ColdChainReliability float64
	Telemetry            Telemetry
}

func NewTruck(id int, capacityKg, speedKmh float64, start Coordinates) *Truck {
	return &Truck{
		TruckID:    id,
		Start:      start,
		Position:   start,
		CapacityKg: capacityKg,
		SpeedKmh:   speedKmh,
		Status:     TruckOperational,
	}
}

// TransitionTo moves the truck along its lifecycle, rejecting any edge
// outside operational -> failed -> rescuing -> operational.
func (t *Truck) TransitionTo(next TruckStatus) error {
	if !t.Status.CanTransition(next) {
		return fmt.Errorf("truck %d: %s -> %s: %w", t.TruckID, t.Status, next, ErrIllegalTransition)
	}
	t.Status = next
	return nil
}

// FreeCapacityKg is the capacity still available for rescue cargo.
func (t *Truck) FreeCapacityKg() float64 {
	free := t.CapacityKg - t.LoadKg
	if free < 0 {
		return 0
	}
	return free
}
