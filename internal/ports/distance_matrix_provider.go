package ports

import (
	"context"
	"fleet-rescue-service/internal/domain"
)

// Optional extension of DistanceProvider that supports batched lookups.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return distances from one origin to many destinations, keyed by
	// destination coordinates.
	DistancesFrom(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) (map[domain.Coordinates]DistanceResult, error)
}
