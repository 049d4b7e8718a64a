package services

import (
	"context"
	"slices"
	"time"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
)

// improve runs a bounded local search over the constructed routes:
// pairwise stop swaps within a route and single-stop relocations
// between routes. A move is accepted only when it reduces total
// distance without breaking capacity or adding late stops. The loop
// stops at the iteration limit, the wall-clock budget, or the first
// pass with no improvement, keeping the best solution found so far.
func (b *RouteBuilder) improve(ctx context.Context, states []*routeState, resolver Resolver, startAt time.Time) {
	deadline := time.Now().Add(b.cfg.Budget.MaxDuration)

	for iter := 0; iter < b.cfg.Budget.MaxIterations; iter++ {
		if ctx.Err() != nil || time.Now().After(deadline) {
			return
		}

		improved := b.trySwaps(states, resolver, startAt)
		if b.tryRelocations(states, resolver, startAt) {
			improved = true
		}

		if !improved {
			return
		}
	}
}

// trySwaps exchanges two stops within one route. First improvement is
// applied immediately.
func (b *RouteBuilder) trySwaps(states []*routeState, resolver Resolver, startAt time.Time) bool {
	improved := false

	for _, s := range states {
		if len(s.stops) < 2 {
			continue
		}

		current, curLate := routeMetrics(s.truck.Start, s.stops, startAt, resolver, b.cfg.Policy)

		for i := 0; i < len(s.stops)-1; i++ {
			for j := i + 1; j < len(s.stops); j++ {
				s.stops[i], s.stops[j] = s.stops[j], s.stops[i]

				meters, late := routeMetrics(s.truck.Start, s.stops, startAt, resolver, b.cfg.Policy)
				if meters < current && late <= curLate {
					current, curLate = meters, late
					improved = true
					continue
				}

				s.stops[i], s.stops[j] = s.stops[j], s.stops[i] // revert
			}
		}
	}

	return improved
}

// tryRelocations moves a single stop from one route to the best
// position of another, respecting the receiving truck's capacity.
func (b *RouteBuilder) tryRelocations(states []*routeState, resolver Resolver, startAt time.Time) bool {
	for ai, a := range states {
		for bi, dst := range states {
			if ai == bi || len(a.stops) == 0 {
				continue
			}

			for si := 0; si < len(a.stops); si++ {
				stop := a.stops[si]
				if dst.loadKg+stop.DemandKg > dst.truck.CapacityKg {
					continue
				}

				aMeters, aLate := routeMetrics(a.truck.Start, a.stops, startAt, resolver, b.cfg.Policy)
				dMeters, dLate := routeMetrics(dst.truck.Start, dst.stops, startAt, resolver, b.cfg.Policy)

				removed := slices.Delete(slices.Clone(a.stops), si, si+1)
				raMeters, raLate := routeMetrics(a.truck.Start, removed, startAt, resolver, b.cfg.Policy)

				for pos := 0; pos <= len(dst.stops); pos++ {
					inserted := slices.Insert(slices.Clone(dst.stops), pos, stop)
					rdMeters, rdLate := routeMetrics(dst.truck.Start, inserted, startAt, resolver, b.cfg.Policy)

					if raMeters+rdMeters < aMeters+dMeters && raLate+rdLate <= aLate+dLate {
						a.stops = removed
						a.loadKg -= stop.DemandKg
						dst.stops = inserted
						dst.loadKg += stop.DemandKg
						return true
					}
				}
			}
		}
	}

	return false
}

// routeMetrics walks a stop sequence and reports total meters plus the
// number of late stops.
func routeMetrics(origin domain.Coordinates, stops []domain.RouteStop, startAt time.Time, resolver Resolver, policy config.ETAPolicy) (int, int) {
	timings, late := walkStops(origin, stops, startAt, resolver, policy)
	meters := 0
	if n := len(timings); n > 0 {
		meters = timings[n-1].cumMeters
	}
	return meters, late
}
