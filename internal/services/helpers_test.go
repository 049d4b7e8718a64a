package services

import (
	"math"
	"time"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

var testDepart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

// gridResolver serves Manhattan distances on a flat grid where one
// degree equals 100 km, driven at 60 km/h. Deterministic and easy to
// reason about in fixtures: a point at lon 0.05 is 5 km and 5 minutes
// from the origin.
type gridResolver struct{}

func (gridResolver) Between(a, b domain.Coordinates) ports.DistanceResult {
	km := (math.Abs(a.Lon-b.Lon) + math.Abs(a.Lat-b.Lat)) * 100
	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(km * 1000)),
		DurationSeconds: int(math.Round(km * 60)),
	}
}

// makeTruck places a healthy refrigerated truck at lonKm on the grid.
func makeTruck(id int, capacityKg, lonKm float64) *domain.Truck {
	t := domain.NewTruck(id, capacityKg, 60, domain.Coordinates{Lon: lonKm / 100})
	t.ColdChainReliability = 0.9
	t.Telemetry = domain.Telemetry{
		TruckID:         id,
		TemperatureC:    4,
		BatteryPercent:  90,
		RefrigerationOn: true,
		RecordedAt:      testDepart,
	}
	return t
}

// makeDelivery places a delivery at lonKm. A zero window means no
// arrival constraint.
func makeDelivery(id int, demandKg, lonKm float64, window domain.TimeWindow) *domain.Delivery {
	return &domain.Delivery{
		DeliveryID: id,
		Location:   domain.Coordinates{Lon: lonKm / 100},
		DemandKg:   demandKg,
		Window:     window,
		Status:     domain.DeliveryPending,
	}
}

func makeStop(id int, demandKg, lonKm float64) domain.RouteStop {
	return domain.RouteStop{
		DeliveryID: id,
		Location:   domain.Coordinates{Lon: lonKm / 100},
		DemandKg:   demandKg,
	}
}
