package services

import (
	"time"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
)

// stopTiming is the internal result of walking one stop.
type stopTiming struct {
	arriveAt    time.Time
	departAt    time.Time
	waitSeconds int
	compliance  domain.Compliance
	cumMeters   int
	cumSeconds  int
}

// walkStops simulates driving a stop sequence from origin at startAt.
// Early arrival idles until the window opens (waited); late arrival is
// flagged but still served. Pickup stops and zero windows are exempt
// from compliance. Returns per-stop timings and the number of late
// stops.
func walkStops(
	origin domain.Coordinates,
	stops []domain.RouteStop,
	startAt time.Time,
	resolver Resolver,
	policy config.ETAPolicy,
) ([]stopTiming, int) {
	timings := make([]stopTiming, 0, len(stops))

	current := origin
	now := startAt
	cumMeters := 0
	cumSeconds := 0
	late := 0

	for _, stop := range stops {
		leg := resolver.Between(current, stop.Location)

		arrive := now.Add(time.Duration(leg.DurationSeconds) * time.Second)
		serviceStart := arrive
		wait := 0
		compliance := domain.ComplianceOnTime

		windowed := !stop.Pickup && !(stop.Window.Start.IsZero() && stop.Window.End.IsZero())
		if windowed {
			if arrive.Before(stop.Window.Start) && policy.WaitForWindowOpen {
				wait = int(stop.Window.Start.Sub(arrive) / time.Second)
				serviceStart = stop.Window.Start
				compliance = domain.ComplianceWaited
			} else if arrive.After(stop.Window.End) {
				compliance = domain.ComplianceLate
				late++
			}
		}

		depart := serviceStart.Add(policy.ServiceTime)

		cumMeters += leg.DistanceMeters
		cumSeconds += leg.DurationSeconds + wait + int(policy.ServiceTime/time.Second)

		timings = append(timings, stopTiming{
			arriveAt:    arrive,
			departAt:    depart,
			waitSeconds: wait,
			compliance:  compliance,
			cumMeters:   cumMeters,
			cumSeconds:  cumSeconds,
		})

		now = depart
		current = stop.Location
	}

	return timings, late
}

// ETAEngine walks a committed route and produces per-stop arrival and
// departure timestamps with window-compliance flags. The walk is pure:
// recomputing over an unchanged route yields identical timestamps.
type ETAEngine struct {
	Policy config.ETAPolicy
}

func NewETAEngine(policy config.ETAPolicy) *ETAEngine {
	return &ETAEngine{Policy: policy}
}

func (e *ETAEngine) ComputeETAs(route *domain.Route, startAt time.Time, resolver Resolver) *domain.Schedule {
	timings, _ := walkStops(route.Origin, route.Stops, startAt, resolver, e.Policy)

	schedule := &domain.Schedule{
		TruckID: route.TruckID,
		StartAt: startAt,
		Stops:   make([]domain.StopETA, 0, len(timings)),
	}

	for i, t := range timings {
		schedule.Stops = append(schedule.Stops, domain.StopETA{
			DeliveryID:        route.Stops[i].DeliveryID,
			ArriveAt:          t.arriveAt,
			DepartAt:          t.departAt,
			WaitSeconds:       t.waitSeconds,
			Compliance:        t.compliance,
			CumulativeMeters:  t.cumMeters,
			CumulativeSeconds: t.cumSeconds,
		})
	}

	if n := len(timings); n > 0 {
		schedule.TotalDistanceMeters = timings[n-1].cumMeters
		schedule.TotalDurationSeconds = timings[n-1].cumSeconds
	}

	return schedule
}
