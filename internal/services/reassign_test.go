package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
)

func newTestEngine() *ReassignmentEngine {
	return NewReassignmentEngine(newTestScorer(), config.DefaultETAPolicy())
}

func failedTruckFixture(remaining float64, stops ...domain.RouteStop) *FailedTruck {
	return &FailedTruck{
		TruckID:           1,
		Position:          domain.Coordinates{},
		RemainingDemandKg: remaining,
		RemainingStops:    stops,
		FailureReasons:    []string{"refrigeration off"},
	}
}

func TestSelectRescueSingleSufficientCapacity(t *testing.T) {
	engine := newTestEngine()

	failed := failedTruckFixture(40, makeStop(1, 20, 5), makeStop(2, 20, 6))

	roomy := makeTruck(2, 100, 5)
	roomy.LoadKg = 40 // 60 kg free, enough alone
	roomy.ColdChainReliability = 0.95

	tight := makeTruck(3, 100, 2)
	tight.LoadKg = 80 // 20 kg free, closer but insufficient
	tight.ColdChainReliability = 0.99

	plan, err := engine.SelectRescue(failed, []RescueCandidate{{Truck: roomy}, {Truck: tight}}, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Split {
		t.Fatalf("plan split, want single rescuer")
	}
	if len(plan.Rescuers) != 1 {
		t.Fatalf("rescuers = %d, want 1", len(plan.Rescuers))
	}

	r := plan.Rescuers[0]
	if r.TruckID != 2 {
		t.Fatalf("rescuer = truck %d, want truck 2", r.TruckID)
	}
	if r.LoadPercent != 100 {
		t.Fatalf("load percent = %v, want 100", r.LoadPercent)
	}
	if r.AllocatedKg != 40 {
		t.Fatalf("allocated = %v kg, want 40", r.AllocatedKg)
	}
	if !r.Stops[0].Pickup {
		t.Fatalf("first stop is not the pickup at the failed truck")
	}
	if len(r.Stops) != 3 {
		t.Fatalf("rescuer stops = %d, want pickup + 2 deliveries", len(r.Stops))
	}
	if r.Stops[1].DeliveryID != 1 || r.Stops[2].DeliveryID != 2 {
		t.Fatalf("handed-over stops out of original order: %d then %d", r.Stops[1].DeliveryID, r.Stops[2].DeliveryID)
	}
}

func TestSelectRescueSplitsProportionally(t *testing.T) {
	engine := newTestEngine()

	failed := failedTruckFixture(150, makeStop(1, 75, 5), makeStop(2, 75, 40))

	a := makeTruck(2, 100, 3)
	a.LoadKg = 20 // 80 kg free
	b := makeTruck(3, 100, 38)
	b.LoadKg = 10 // 90 kg free

	plan, err := engine.SelectRescue(failed, []RescueCandidate{{Truck: a}, {Truck: b}}, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Split {
		t.Fatalf("plan not split; no single truck covers 150 kg")
	}
	if len(plan.Rescuers) != 2 {
		t.Fatalf("rescuers = %d, want 2", len(plan.Rescuers))
	}

	var totalPercent, totalKg float64
	percents := make(map[int]float64, 2)
	for _, r := range plan.Rescuers {
		totalPercent += r.LoadPercent
		totalKg += r.AllocatedKg
		percents[r.TruckID] = r.LoadPercent

		free := 0.0
		switch r.TruckID {
		case 2:
			free = 80
		case 3:
			free = 90
		default:
			t.Fatalf("unexpected rescuer truck %d", r.TruckID)
		}
		if r.AllocatedKg > free {
			t.Fatalf("truck %d allocated %.1f kg over its %.0f kg free", r.TruckID, r.AllocatedKg, free)
		}
	}

	if math.Abs(totalPercent-100) > 0.01 {
		t.Fatalf("load percents sum to %v, want 100", totalPercent)
	}
	if math.Abs(totalKg-150) > 0.01 {
		t.Fatalf("allocated total %v kg, want 150", totalKg)
	}
	// 80 and 90 kg free split the load roughly 47% / 53%.
	if math.Abs(percents[2]-47.06) > 0.1 || math.Abs(percents[3]-52.94) > 0.1 {
		t.Fatalf("split = %.2f%% / %.2f%%, want ~47.06 / 52.94", percents[2], percents[3])
	}
}

func TestSelectRescueSplitPartitionsStopsExactly(t *testing.T) {
	engine := newTestEngine()

	failed := failedTruckFixture(150,
		makeStop(1, 50, 5),
		makeStop(2, 50, 20),
		makeStop(3, 50, 40),
	)

	a := makeTruck(2, 100, 3)
	a.LoadKg = 20
	b := makeTruck(3, 100, 38)
	b.LoadKg = 10

	plan, err := engine.SelectRescue(failed, []RescueCandidate{{Truck: a}, {Truck: b}}, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[int]int)
	for _, r := range plan.Rescuers {
		for _, s := range r.Stops {
			if s.Pickup {
				continue
			}
			seen[s.DeliveryID]++
		}
	}

	for _, id := range []int{1, 2, 3} {
		if seen[id] != 1 {
			t.Fatalf("delivery %d assigned %d times, want exactly once", id, seen[id])
		}
	}
	if len(seen) != 3 {
		t.Fatalf("partition covers %d deliveries, want 3", len(seen))
	}
}

func TestSelectRescueNoCandidates(t *testing.T) {
	engine := newTestEngine()
	failed := failedTruckFixture(40, makeStop(1, 40, 5))

	_, err := engine.SelectRescue(failed, nil, gridResolver{}, testDepart)
	if !errors.Is(err, domain.ErrNoRescueAvailable) {
		t.Fatalf("err = %v, want ErrNoRescueAvailable", err)
	}
}

func TestSelectRescueInsufficientCombinedCapacity(t *testing.T) {
	engine := newTestEngine()
	failed := failedTruckFixture(100, makeStop(1, 100, 5))

	a := makeTruck(2, 100, 3)
	a.LoadKg = 70 // 30 free
	b := makeTruck(3, 100, 8)
	b.LoadKg = 70 // 30 free

	_, err := engine.SelectRescue(failed, []RescueCandidate{{Truck: a}, {Truck: b}}, gridResolver{}, testDepart)
	if !errors.Is(err, domain.ErrNoRescueAvailable) {
		t.Fatalf("err = %v, want ErrNoRescueAvailable", err)
	}
}

func TestSelectRescueEtaPreservedFlag(t *testing.T) {
	engine := newTestEngine()

	failed := failedTruckFixture(40, makeStop(1, 40, 5))
	failed.OriginalETAs = map[int]time.Time{1: testDepart.Add(5 * time.Minute)}

	rescuer := makeTruck(2, 100, 4)

	engine.EtaTolerance = 24 * time.Hour
	plan, err := engine.SelectRescue(failed, []RescueCandidate{{Truck: rescuer}}, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.EtaPreserved {
		t.Fatalf("eta not preserved under a generous tolerance")
	}

	engine.EtaTolerance = time.Second
	plan, err = engine.SelectRescue(failed, []RescueCandidate{{Truck: rescuer}}, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.EtaPreserved {
		t.Fatalf("eta preserved under a one-second tolerance")
	}
}

func TestApplyRescueReplacesRoutes(t *testing.T) {
	engine := newTestEngine()

	failed := failedTruckFixture(40, makeStop(1, 20, 5), makeStop(2, 20, 6))

	rescuer := makeTruck(2, 100, 10)
	plan, err := engine.SelectRescue(failed, []RescueCandidate{{Truck: rescuer}}, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	routes := domain.NewRouteSet()
	routes.Routes[1] = &domain.Route{
		TruckID: 1,
		Stops:   []domain.RouteStop{makeStop(1, 20, 5), makeStop(2, 20, 6)},
	}
	routes.Routes[2] = &domain.Route{
		TruckID: 2,
		Origin:  rescuer.Start,
		Stops:   []domain.RouteStop{makeStop(3, 10, 70)},
	}

	next := engine.ApplyRescue(plan, routes, gridResolver{}, testDepart)

	if got := len(next.Routes[1].Stops); got != 0 {
		t.Fatalf("failed truck keeps %d stops, want 0", got)
	}

	rescuerStops := next.Routes[2].Stops
	if len(rescuerStops) != 4 {
		t.Fatalf("rescuer stops = %d, want pickup + 2 handed over + 1 own", len(rescuerStops))
	}
	if !rescuerStops[0].Pickup {
		t.Fatalf("rescuer's first stop is not the pickup")
	}
	if rescuerStops[3].DeliveryID != 3 {
		t.Fatalf("rescuer's own stop no longer last: got delivery %d", rescuerStops[3].DeliveryID)
	}

	// Input set must stay untouched.
	if got := len(routes.Routes[1].Stops); got != 2 {
		t.Fatalf("input route set mutated: failed truck stops = %d, want 2", got)
	}
}
