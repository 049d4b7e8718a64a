package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"fleet-rescue-service/internal/domain"
)

func newTestBuilder() *RouteBuilder {
	return NewRouteBuilder(RouteBuilderConfig{})
}

func TestBuildRoutesRespectsCapacity(t *testing.T) {
	trucks := []*domain.Truck{
		makeTruck(1, 50, 0),
		makeTruck(2, 50, 0),
	}
	deliveries := []*domain.Delivery{
		makeDelivery(1, 20, 10, domain.TimeWindow{}),
		makeDelivery(2, 20, 20, domain.TimeWindow{}),
		makeDelivery(3, 20, 30, domain.TimeWindow{}),
		makeDelivery(4, 20, 40, domain.TimeWindow{}),
	}

	routes, overflow, err := newTestBuilder().BuildRoutes(context.Background(), trucks, deliveries, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overflow) != 0 {
		t.Fatalf("overflow = %d deliveries, want 0", len(overflow))
	}

	assigned := 0
	for _, truck := range trucks {
		route := routes.Routes[truck.TruckID]
		if route == nil {
			t.Fatalf("truck %d missing from route set", truck.TruckID)
		}
		if demand := route.DemandKg(); demand > truck.CapacityKg {
			t.Fatalf("truck %d carries %.0f kg over capacity %.0f kg", truck.TruckID, demand, truck.CapacityKg)
		}
		assigned += len(route.Stops)
	}
	if assigned != len(deliveries) {
		t.Fatalf("assigned %d stops, want %d", assigned, len(deliveries))
	}

	for _, d := range deliveries {
		if d.Status != domain.DeliveryEnroute {
			t.Fatalf("delivery %d status = %s, want %s", d.DeliveryID, d.Status, domain.DeliveryEnroute)
		}
		if d.AssignedTruck == 0 {
			t.Fatalf("delivery %d has no assigned truck", d.DeliveryID)
		}
	}
}

func TestBuildRoutesOverflowsUnplaceableDelivery(t *testing.T) {
	trucks := []*domain.Truck{makeTruck(1, 50, 0)}
	deliveries := []*domain.Delivery{
		makeDelivery(1, 30, 10, domain.TimeWindow{}),
		makeDelivery(2, 30, 20, domain.TimeWindow{}),
	}

	routes, overflow, err := newTestBuilder().BuildRoutes(context.Background(), trucks, deliveries, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(overflow) != 1 {
		t.Fatalf("overflow = %d deliveries, want 1", len(overflow))
	}
	if demand := routes.Routes[1].DemandKg(); demand != 30 {
		t.Fatalf("assigned demand = %.0f kg, want 30", demand)
	}
	if overflow[0].Status != domain.DeliveryPending {
		t.Fatalf("overflow delivery status = %s, want %s", overflow[0].Status, domain.DeliveryPending)
	}
}

func TestBuildRoutesRejectsDemandNoTruckCanCarry(t *testing.T) {
	trucks := []*domain.Truck{makeTruck(1, 50, 0)}
	deliveries := []*domain.Delivery{makeDelivery(1, 60, 10, domain.TimeWindow{})}

	_, _, err := newTestBuilder().BuildRoutes(context.Background(), trucks, deliveries, gridResolver{}, testDepart)
	if !errors.Is(err, domain.ErrDemandExceedsFleet) {
		t.Fatalf("err = %v, want ErrDemandExceedsFleet", err)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *domain.ValidationError", err)
	}
}

func TestBuildRoutesRejectsInvertedWindow(t *testing.T) {
	trucks := []*domain.Truck{makeTruck(1, 50, 0)}
	deliveries := []*domain.Delivery{
		makeDelivery(1, 10, 10, domain.TimeWindow{
			Start: testDepart.Add(2 * time.Hour),
			End:   testDepart.Add(time.Hour),
		}),
	}

	_, _, err := newTestBuilder().BuildRoutes(context.Background(), trucks, deliveries, gridResolver{}, testDepart)
	if !errors.Is(err, domain.ErrInvalidTimeWindow) {
		t.Fatalf("err = %v, want ErrInvalidTimeWindow", err)
	}
}

func TestBuildRoutesPrefersFewerTrucks(t *testing.T) {
	trucks := []*domain.Truck{
		makeTruck(1, 100, 0),
		makeTruck(2, 100, 0),
	}
	deliveries := []*domain.Delivery{
		makeDelivery(1, 10, 10, domain.TimeWindow{}),
		makeDelivery(2, 10, 11, domain.TimeWindow{}),
	}

	routes, overflow, err := newTestBuilder().BuildRoutes(context.Background(), trucks, deliveries, gridResolver{}, testDepart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overflow) != 0 {
		t.Fatalf("overflow = %d, want 0", len(overflow))
	}

	if got := len(routes.Routes[1].Stops); got != 2 {
		t.Fatalf("truck 1 stops = %d, want 2 (both deliveries on one truck)", got)
	}
	if got := len(routes.Routes[2].Stops); got != 0 {
		t.Fatalf("truck 2 stops = %d, want 0", got)
	}
}

func TestBuildRoutesDeterministic(t *testing.T) {
	build := func() [][]int {
		trucks := []*domain.Truck{
			makeTruck(1, 60, 0),
			makeTruck(2, 60, 50),
		}
		deliveries := []*domain.Delivery{
			makeDelivery(1, 20, 10, domain.TimeWindow{}),
			makeDelivery(2, 20, 45, domain.TimeWindow{}),
			makeDelivery(3, 20, 15, domain.TimeWindow{}),
			makeDelivery(4, 20, 55, domain.TimeWindow{}),
		}

		routes, _, err := newTestBuilder().BuildRoutes(context.Background(), trucks, deliveries, gridResolver{}, testDepart)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := make([][]int, 0, 2)
		for _, id := range []int{1, 2} {
			seq := make([]int, 0)
			for _, s := range routes.Routes[id].Stops {
				seq = append(seq, s.DeliveryID)
			}
			out = append(out, seq)
		}
		return out
	}

	first := build()
	second := build()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ: %v vs %v", first, second)
	}
}
