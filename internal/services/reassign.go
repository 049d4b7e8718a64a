package services

import (
	"fmt"
	"time"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
)

// ReassignmentEngine turns a failure into a committed rescue plan:
// either one rescuer absorbs the whole stranded load, or the load is
// split across several with the remaining stops partitioned between
// them.
type ReassignmentEngine struct {
	Scorer *RescueScorer
	Policy config.ETAPolicy

	// EtaTolerance bounds how far a replacement arrival may drift from
	// the original schedule and still count as preserved.
	EtaTolerance time.Duration
}

func NewReassignmentEngine(scorer *RescueScorer, policy config.ETAPolicy) *ReassignmentEngine {
	return &ReassignmentEngine{
		Scorer:       scorer,
		Policy:       policy,
		EtaTolerance: 15 * time.Minute,
	}
}

// SelectRescue picks rescuer(s) for a failed truck. A single rescuer is
// preferred whenever any candidate, best score first, can absorb the
// whole remaining load; otherwise rescuers are taken down the ranking
// until their combined free capacity covers it and the load is split
// between them in proportion to free capacity. When no combination
// covers the demand the result is ErrNoRescueAvailable, never a silent
// drop.
func (e *ReassignmentEngine) SelectRescue(
	failed *FailedTruck,
	candidates []RescueCandidate,
	resolver Resolver,
	now time.Time,
) (*domain.RescuePlan, error) {
	ranked := e.Scorer.Rank(failed, candidates, resolver)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("rescue truck %d: no eligible candidates: %w", failed.TruckID, domain.ErrNoRescueAvailable)
	}

	byID := make(map[int]*domain.Truck, len(candidates))
	for _, c := range candidates {
		byID[c.Truck.TruckID] = c.Truck
	}

	plan := &domain.RescuePlan{
		FailedTruckID:     failed.TruckID,
		RemainingDemandKg: failed.RemainingDemandKg,
		FailureReasons:    failed.FailureReasons,
		Candidates:        ranked,
		CreatedAt:         now,
	}

	for _, sc := range ranked {
		t := byID[sc.TruckID]
		if t.FreeCapacityKg() < failed.RemainingDemandKg {
			continue
		}
		a := e.buildAssignment(t, failed, failed.RemainingStops, failed.RemainingDemandKg, resolver, now)
		a.LoadPercent = 100
		plan.Rescuers = []domain.RescuerAssignment{a}
		plan.EtaPreserved = e.etaPreserved(failed, plan.Rescuers, resolver, now)
		return plan, nil
	}

	// Split path: take rescuers down the ranking until their combined
	// free capacity covers the demand.
	var (
		selected []*domain.Truck
		pool     float64
	)
	for _, sc := range ranked {
		t := byID[sc.TruckID]
		free := t.FreeCapacityKg()
		if free <= 0 {
			continue
		}
		selected = append(selected, t)
		pool += free
		if pool >= failed.RemainingDemandKg {
			break
		}
	}
	if pool < failed.RemainingDemandKg {
		return nil, fmt.Errorf("rescue truck %d: %.0f kg exceeds combined free capacity %.0f kg: %w",
			failed.TruckID, failed.RemainingDemandKg, pool, domain.ErrNoRescueAvailable)
	}

	plan.Split = true
	groups := e.partitionStops(failed.RemainingStops, selected, resolver)

	// Each rescuer carries its share of the pool, so the shares sum to
	// 100% and never exceed any individual truck's free capacity.
	for _, t := range selected {
		share := t.FreeCapacityKg() / pool
		kg := share * failed.RemainingDemandKg
		a := e.buildAssignment(t, failed, groups[t.TruckID], kg, resolver, now)
		a.LoadPercent = share * 100
		plan.Rescuers = append(plan.Rescuers, a)
	}
	plan.EtaPreserved = e.etaPreserved(failed, plan.Rescuers, resolver, now)

	return plan, nil
}

// partitionStops assigns every remaining stop to the nearest selected
// rescuer. Each stop lands in exactly one group.
func (e *ReassignmentEngine) partitionStops(
	stops []domain.RouteStop,
	rescuers []*domain.Truck,
	resolver Resolver,
) map[int][]domain.RouteStop {
	groups := make(map[int][]domain.RouteStop, len(rescuers))

	for _, stop := range stops {
		bestID := rescuers[0].TruckID
		bestMeters := -1
		for _, t := range rescuers {
			meters := resolver.Between(t.Position, stop.Location).DistanceMeters
			if bestMeters < 0 || meters < bestMeters {
				bestMeters = meters
				bestID = t.TruckID
			}
		}
		groups[bestID] = append(groups[bestID], stop)
	}

	return groups
}

// buildAssignment constructs one rescuer's segment: drive to the failed
// truck, pick up the allocated cargo, then serve the handed-over stops
// in their original order.
func (e *ReassignmentEngine) buildAssignment(
	rescuer *domain.Truck,
	failed *FailedTruck,
	stops []domain.RouteStop,
	allocatedKg float64,
	resolver Resolver,
	now time.Time,
) domain.RescuerAssignment {
	pickup := domain.RouteStop{
		Location: failed.Position,
		DemandKg: allocatedKg,
		Pickup:   true,
	}

	seq := make([]domain.RouteStop, 0, len(stops)+1)
	seq = append(seq, pickup)
	seq = append(seq, stops...)

	route := &domain.Route{
		TruckID: rescuer.TruckID,
		Origin:  rescuer.Position,
		Stops:   seq,
	}
	timings, late := walkStops(route.Origin, seq, now, resolver, e.Policy)
	if n := len(timings); n > 0 {
		route.TotalDistanceMeters = timings[n-1].cumMeters
		route.TotalDurationSeconds = timings[n-1].cumSeconds
	}
	route.Feasible = late == 0

	approach := resolver.Between(rescuer.Position, failed.Position)

	return domain.RescuerAssignment{
		TruckID:        rescuer.TruckID,
		AllocatedKg:    allocatedKg,
		Stops:          seq,
		Route:          route,
		DistanceMeters: route.TotalDistanceMeters,
		EtaSeconds:     approach.DurationSeconds,
	}
}

// etaPreserved reports whether every handed-over stop's new arrival
// stays within EtaTolerance of the failed truck's original schedule.
// Without an original schedule there is nothing to preserve.
func (e *ReassignmentEngine) etaPreserved(
	failed *FailedTruck,
	rescuers []domain.RescuerAssignment,
	resolver Resolver,
	now time.Time,
) bool {
	if len(failed.OriginalETAs) == 0 {
		return false
	}

	for _, a := range rescuers {
		timings, _ := walkStops(a.Route.Origin, a.Stops, now, resolver, e.Policy)
		for i, stop := range a.Stops {
			if stop.Pickup {
				continue
			}
			orig, ok := failed.OriginalETAs[stop.DeliveryID]
			if !ok {
				continue
			}
			delta := timings[i].arriveAt.Sub(orig)
			if delta < 0 {
				delta = -delta
			}
			if delta > e.EtaTolerance {
				return false
			}
		}
	}

	return true
}

// ApplyRescue folds a committed plan into the current route set: the
// failed truck loses the handed-over stops and each rescuer's segment
// is prepended to its own remaining route. Routes are replaced
// wholesale, never patched stop-by-stop.
func (e *ReassignmentEngine) ApplyRescue(
	plan *domain.RescuePlan,
	routes *domain.RouteSet,
	resolver Resolver,
	startAt time.Time,
) *domain.RouteSet {
	next := routes.Clone()

	reassigned := make(map[int]struct{})
	for _, a := range plan.Rescuers {
		for _, s := range a.Stops {
			if !s.Pickup {
				reassigned[s.DeliveryID] = struct{}{}
			}
		}
	}

	if failedRoute, ok := next.Routes[plan.FailedTruckID]; ok {
		kept := make([]domain.RouteStop, 0, len(failedRoute.Stops))
		for _, s := range failedRoute.Stops {
			if _, gone := reassigned[s.DeliveryID]; !gone {
				kept = append(kept, s)
			}
		}
		failedRoute.Stops = kept
		e.refreshRoute(failedRoute, resolver, startAt)
	}

	for _, a := range plan.Rescuers {
		route, ok := next.Routes[a.TruckID]
		if !ok {
			route = &domain.Route{TruckID: a.TruckID}
			next.Routes[a.TruckID] = route
		}

		// Rescue cargo comes first: the stranded cold chain is the
		// urgent part, the rescuer's own stops follow.
		merged := make([]domain.RouteStop, 0, len(a.Stops)+len(route.Stops))
		merged = append(merged, a.Stops...)
		merged = append(merged, route.Stops...)

		route.Origin = a.Route.Origin
		route.Stops = merged
		e.refreshRoute(route, resolver, startAt)
	}

	return next
}

// refreshRoute recomputes cumulative metrics and window feasibility
// after a stop sequence changed.
func (e *ReassignmentEngine) refreshRoute(r *domain.Route, resolver Resolver, startAt time.Time) {
	timings, late := walkStops(r.Origin, r.Stops, startAt, resolver, e.Policy)
	r.TotalDistanceMeters = 0
	r.TotalDurationSeconds = 0
	if n := len(timings); n > 0 {
		r.TotalDistanceMeters = timings[n-1].cumMeters
		r.TotalDurationSeconds = timings[n-1].cumSeconds
	}
	r.Feasible = late == 0
}
