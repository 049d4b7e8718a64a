package ports

import (
	"context"
	"fleet-rescue-service/internal/domain"
)

// Distance and travel duration between two coordinates. Degraded marks
// results produced by the geodesic estimate instead of a live source.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
	Degraded        bool
}

// Contract for retrieving travel distance and duration between coordinates.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two points.
	DistanceAndDuration(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}
