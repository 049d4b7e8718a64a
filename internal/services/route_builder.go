package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
)

// RouteBuilderConfig tunes construction and improvement. The window
// penalty prices a late insertion in meters so construction prefers
// on-time slots but can still place a delivery nothing else fits.
type RouteBuilderConfig struct {
	Budget              config.OptimizerBudget
	Policy              config.ETAPolicy
	WindowPenaltyMeters float64
}

// RouteBuilder constructs multi-vehicle routes under capacity and
// time-window constraints using cheapest insertion followed by a
// bounded local search.
//
// It does not call an external solver; determinism and a hard time
// budget matter more here than squeezing out the last few percent of
// distance.
type RouteBuilder struct {
	cfg RouteBuilderConfig
}

func NewRouteBuilder(cfg RouteBuilderConfig) *RouteBuilder {
	if cfg.Budget.MaxIterations <= 0 {
		cfg.Budget = config.DefaultOptimizerBudget()
	}
	if cfg.Policy.ServiceTime <= 0 {
		cfg.Policy = config.DefaultETAPolicy()
	}
	if cfg.WindowPenaltyMeters <= 0 {
		cfg.WindowPenaltyMeters = 10000
	}
	return &RouteBuilder{cfg: cfg}
}

// routeState is the builder's mutable working copy of one truck route.
type routeState struct {
	truck  *domain.Truck
	stops  []domain.RouteStop
	loadKg float64
}

// cost walks the current stop sequence and prices it: total meters plus
// the window penalty per late stop.
func (s *routeState) cost(resolver Resolver, startAt time.Time, policy config.ETAPolicy, penaltyMeters float64) float64 {
	timings, late := walkStops(s.truck.Start, s.stops, startAt, resolver, policy)
	meters := 0
	if n := len(timings); n > 0 {
		meters = timings[n-1].cumMeters
	}
	return float64(meters) + penaltyMeters*float64(late)
}

type insertion struct {
	stateIdx int
	position int
	cost     float64
	found    bool
}

// BuildRoutes assigns deliveries to trucks. Deliveries that fit no
// truck are returned as overflow, not errors. Tie-break policy: fewer
// trucks used, then lower total distance, then lower truck id.
func (b *RouteBuilder) BuildRoutes(
	ctx context.Context,
	trucks []*domain.Truck,
	deliveries []*domain.Delivery,
	resolver Resolver,
	startAt time.Time,
) (*domain.RouteSet, []*domain.Delivery, error) {
	if err := ValidateFleetInput(trucks, deliveries); err != nil {
		return nil, nil, fmt.Errorf("build routes: %w", err)
	}

	states := make([]*routeState, 0, len(trucks))
	for _, t := range trucks {
		states = append(states, &routeState{truck: t})
	}
	// Deterministic truck order so the lower-id tie-break holds.
	slices.SortFunc(states, func(a, c *routeState) int {
		return a.truck.TruckID - c.truck.TruckID
	})

	// Higher priority first; id breaks ties so runs are reproducible.
	ordered := make([]*domain.Delivery, len(deliveries))
	copy(ordered, deliveries)
	slices.SortFunc(ordered, func(a, c *domain.Delivery) int {
		if a.Priority != c.Priority {
			return c.Priority - a.Priority
		}
		return a.DeliveryID - c.DeliveryID
	})

	overflow := make([]*domain.Delivery, 0)

	for _, d := range ordered {
		best := b.cheapestInsertion(states, d, resolver, startAt)
		if !best.found {
			overflow = append(overflow, d)
			continue
		}

		s := states[best.stateIdx]
		stop := domain.RouteStop{
			DeliveryID: d.DeliveryID,
			Location:   d.Location,
			DemandKg:   d.DemandKg,
			Window:     d.Window,
		}
		s.stops = slices.Insert(s.stops, best.position, stop)
		s.loadKg += d.DemandKg
	}

	b.improve(ctx, states, resolver, startAt)

	routeSet := domain.NewRouteSet()
	byID := make(map[int]*domain.Delivery, len(deliveries))
	for _, d := range deliveries {
		byID[d.DeliveryID] = d
	}

	for _, s := range states {
		timings, late := walkStops(s.truck.Start, s.stops, startAt, resolver, b.cfg.Policy)

		route := &domain.Route{
			TruckID:  s.truck.TruckID,
			Origin:   s.truck.Start,
			Stops:    s.stops,
			Feasible: late == 0 && s.loadKg <= s.truck.CapacityKg,
		}
		if n := len(timings); n > 0 {
			route.TotalDistanceMeters = timings[n-1].cumMeters
			route.TotalDurationSeconds = timings[n-1].cumSeconds
		}
		routeSet.Routes[s.truck.TruckID] = route

		for seq, stop := range s.stops {
			if d, ok := byID[stop.DeliveryID]; ok {
				d.AssignedTruck = s.truck.TruckID
				d.Sequence = seq
				d.Status = domain.DeliveryEnroute
			}
		}
	}

	return routeSet, overflow, nil
}

// cheapestInsertion evaluates inserting d at every position of every
// truck route. Capacity is a hard constraint; a late arrival only adds
// the window penalty to the insertion cost.
func (b *RouteBuilder) cheapestInsertion(
	states []*routeState,
	d *domain.Delivery,
	resolver Resolver,
	startAt time.Time,
) insertion {
	best := insertion{cost: math.Inf(1)}

	for si, s := range states {
		if s.loadKg+d.DemandKg > s.truck.CapacityKg {
			continue
		}

		baseCost := s.cost(resolver, startAt, b.cfg.Policy, b.cfg.WindowPenaltyMeters)

		stop := domain.RouteStop{
			DeliveryID: d.DeliveryID,
			Location:   d.Location,
			DemandKg:   d.DemandKg,
			Window:     d.Window,
		}

		for pos := 0; pos <= len(s.stops); pos++ {
			trial := routeState{truck: s.truck, stops: slices.Insert(slices.Clone(s.stops), pos, stop)}
			cost := trial.cost(resolver, startAt, b.cfg.Policy, b.cfg.WindowPenaltyMeters) - baseCost

			if b.insertionBetter(cost, si, pos, best, states) {
				best = insertion{stateIdx: si, position: pos, cost: cost, found: true}
			}
		}
	}

	return best
}

// insertionBetter applies the tie-break policy: strictly cheaper wins;
// at equal cost prefer a truck already in use (fewer trucks used), then
// the lower truck id, then the earlier position.
func (b *RouteBuilder) insertionBetter(cost float64, stateIdx, pos int, best insertion, states []*routeState) bool {
	if !best.found {
		return true
	}

	const eps = 1e-6
	if cost < best.cost-eps {
		return true
	}
	if cost > best.cost+eps {
		return false
	}

	candUsed := len(states[stateIdx].stops) > 0
	bestUsed := len(states[best.stateIdx].stops) > 0
	if candUsed != bestUsed {
		return candUsed
	}

	if states[stateIdx].truck.TruckID != states[best.stateIdx].truck.TruckID {
		return states[stateIdx].truck.TruckID < states[best.stateIdx].truck.TruckID
	}

	return pos < best.position
}
