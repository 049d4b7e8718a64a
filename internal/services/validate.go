package services

import (
	"errors"
	"fmt"

	"fleet-rescue-service/internal/domain"
)

// ValidateFleetInput rejects malformed trucks and deliveries before any
// optimization starts. A delivery whose demand no single truck could
// ever carry is infeasible input, not overflow.
func ValidateFleetInput(trucks []*domain.Truck, deliveries []*domain.Delivery) error {
	if len(trucks) == 0 {
		return &domain.ValidationError{Field: "trucks", Reason: errors.New("fleet is empty")}
	}

	var maxCapacity float64
	for _, t := range trucks {
		if t.CapacityKg <= 0 {
			return &domain.ValidationError{
				Field:  fmt.Sprintf("truck %d capacity", t.TruckID),
				Reason: domain.ErrNonPositiveCapacity,
			}
		}
		if t.SpeedKmh <= 0 {
			return &domain.ValidationError{
				Field:  fmt.Sprintf("truck %d speed", t.TruckID),
				Reason: domain.ErrNonPositiveSpeed,
			}
		}
		if t.CapacityKg > maxCapacity {
			maxCapacity = t.CapacityKg
		}
	}

	for _, d := range deliveries {
		if err := d.Window.Validate(); err != nil {
			return &domain.ValidationError{
				Field:  fmt.Sprintf("delivery %d window", d.DeliveryID),
				Reason: err,
			}
		}
		if d.DemandKg <= 0 {
			return &domain.ValidationError{
				Field:  fmt.Sprintf("delivery %d demand", d.DeliveryID),
				Reason: errors.New("demand must be positive"),
			}
		}
		if d.DemandKg > maxCapacity {
			return &domain.ValidationError{
				Field:  fmt.Sprintf("delivery %d demand", d.DeliveryID),
				Reason: domain.ErrDemandExceedsFleet,
			}
		}
	}

	return nil
}
