package ports

import (
	"context"
	"fleet-rescue-service/internal/domain"
)

// Port: a persistent cache for origin->destination distance results.
type DistanceCache interface {
	// Fetch cached results for one origin and multiple destinations.
	// Missing pairs are simply absent from the returned map.
	GetMany(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) (map[domain.Coordinates]DistanceResult, error)
	// Store many results for a single origin.
	PutMany(ctx context.Context, origin domain.Coordinates, results map[domain.Coordinates]DistanceResult) error
}
