package ports

import (
	"context"
	"fleet-rescue-service/internal/domain"
)

// Port: a boundary for retrieving fleet entities from a data source.
type FleetRepository interface {
	// Retrieve all trucks available for routing.
	ListTrucks(ctx context.Context) ([]*domain.Truck, error)
	// Retrieve all deliveries awaiting assignment.
	ListDeliveries(ctx context.Context) ([]*domain.Delivery, error)
}
