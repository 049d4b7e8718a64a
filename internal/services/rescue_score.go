package services

import (
	"slices"
	"time"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
)

// FailedTruck is the snapshot handed to rescue selection: where the
// truck stranded, what it still had on board, and the schedule it was
// driving so replacement ETAs can be compared to the originals.
type FailedTruck struct {
	TruckID           int
	Position          domain.Coordinates
	RemainingDemandKg float64
	RemainingStops    []domain.RouteStop
	OriginalETAs      map[int]time.Time
	FailureReasons    []string
}

// RescueCandidate is an operational truck considered as a rescuer,
// with the number of stops still on its own route.
type RescueCandidate struct {
	Truck          *domain.Truck
	StopsRemaining int
}

// RescueScorer ranks candidate rescuers with a weighted formula. The
// weights and eligibility thresholds are injected so scoring stays
// auditable and testable in isolation.
type RescueScorer struct {
	Weights    config.ScoringWeights
	Thresholds config.FailureThresholds
}

func NewRescueScorer(weights config.ScoringWeights, thresholds config.FailureThresholds) *RescueScorer {
	return &RescueScorer{Weights: weights, Thresholds: thresholds}
}

// Eligible applies the minimum bar for a rescuer: operational, cold
// chain running, battery above the rescue minimum, and free capacity
// worth dispatching. The failed truck never rescues itself.
func (s *RescueScorer) Eligible(c RescueCandidate, failed *FailedTruck) bool {
	t := c.Truck
	if t.TruckID == failed.TruckID || t.Status != domain.TruckOperational {
		return false
	}
	if !t.Telemetry.RefrigerationOn {
		return false
	}
	if t.Telemetry.BatteryPercent <= s.Thresholds.MinRescueBatteryPercent {
		return false
	}
	return t.FreeCapacityKg() >= s.Thresholds.MinRescueCapacityKg
}

// Score prices one candidate: closer, emptier, more reliable trucks
// with fewer stops of their own score higher.
func (s *RescueScorer) Score(c RescueCandidate, failed *FailedTruck, resolver Resolver) float64 {
	leg := resolver.Between(c.Truck.Position, failed.Position)
	km := float64(leg.DistanceMeters) / 1000
	distanceFactor := 1 / (km + 0.1)
	etaFactor := float64(leg.DurationSeconds) / 60 / 60

	return s.Weights.Alpha*distanceFactor -
		s.Weights.Beta*float64(c.StopsRemaining) +
		s.Weights.Gamma*c.Truck.FreeCapacityKg() +
		s.Weights.Delta*c.Truck.ColdChainReliability -
		s.Weights.Epsilon*etaFactor
}

// Rank filters ineligible candidates and returns the rest scored,
// descending. Equal scores break toward the lower truck id so ranking
// is deterministic.
func (s *RescueScorer) Rank(failed *FailedTruck, candidates []RescueCandidate, resolver Resolver) []domain.ScoredCandidate {
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !s.Eligible(c, failed) {
			continue
		}
		scored = append(scored, domain.ScoredCandidate{
			TruckID: c.Truck.TruckID,
			Score:   s.Score(c, failed, resolver),
		})
	}

	slices.SortFunc(scored, func(a, b domain.ScoredCandidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.TruckID - b.TruckID
		}
	})

	return scored
}
