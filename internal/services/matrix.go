package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

// Resolver answers distance and duration between two points without I/O.
// Route construction, the ETA walk, and rescue scoring are pure over a
// Resolver, which keeps them safely parallelizable across trucks.
type Resolver interface {
	Between(origin, destination domain.Coordinates) ports.DistanceResult
}

type matrixKey struct {
	from, to domain.Coordinates
}

// Matrix is a precomputed all-pairs distance table. DegradedPairs counts
// entries served by the geodesic estimate instead of the live source.
type Matrix struct {
	entries       map[matrixKey]ports.DistanceResult
	DegradedPairs int
}

func (m *Matrix) Between(origin, destination domain.Coordinates) ports.DistanceResult {
	if origin == destination {
		return ports.DistanceResult{}
	}
	return m.entries[matrixKey{from: origin, to: destination}]
}

// BuildMatrix fetches all ordered pairs over the given points with
// bounded parallelism. Per-pair timeouts and geodesic fallback live in
// the provider, so a single slow or failed lookup degrades one entry
// rather than aborting the batch.
func BuildMatrix(
	ctx context.Context,
	provider ports.DistanceProvider,
	points []domain.Coordinates,
	parallelism int,
) (*Matrix, error) {
	if parallelism <= 0 {
		parallelism = 5
	}

	seen := make(map[domain.Coordinates]struct{}, len(points))
	uniq := make([]domain.Coordinates, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}

	m := &Matrix{entries: make(map[matrixKey]ports.DistanceResult, len(uniq)*len(uniq))}
	var mu sync.Mutex

	mp, hasMatrix := provider.(ports.DistanceMatrixProvider)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, origin := range uniq {
		origin := origin
		g.Go(func() error {
			targets := make([]domain.Coordinates, 0, len(uniq)-1)
			for _, t := range uniq {
				if t != origin {
					targets = append(targets, t)
				}
			}
			if len(targets) == 0 {
				return nil
			}

			var (
				row map[domain.Coordinates]ports.DistanceResult
				err error
			)
			if hasMatrix {
				row, err = mp.DistancesFrom(ctx, origin, targets)
				if err != nil {
					return fmt.Errorf("build matrix: row from %s: %w", origin.Key(), err)
				}
			} else {
				row = make(map[domain.Coordinates]ports.DistanceResult, len(targets))
				for _, t := range targets {
					r, e := provider.DistanceAndDuration(ctx, origin, t)
					if e != nil {
						return fmt.Errorf("build matrix: %s -> %s: %w", origin.Key(), t.Key(), e)
					}
					row[t] = r
				}
			}

			mu.Lock()
			for dest, r := range row {
				m.entries[matrixKey{from: origin, to: dest}] = r
				if r.Degraded {
					m.DegradedPairs++
				}
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return m, nil
}

// providerResolver adapts a DistanceProvider for synchronous callers
// such as rescue scoring, where lookups are few and on demand. Errors
// surface as zero results; in practice the fallback provider never
// fails.
type providerResolver struct {
	ctx      context.Context
	provider ports.DistanceProvider
}

func NewProviderResolver(ctx context.Context, provider ports.DistanceProvider) Resolver {
	return &providerResolver{ctx: ctx, provider: provider}
}

func (r *providerResolver) Between(origin, destination domain.Coordinates) ports.DistanceResult {
	if origin == destination {
		return ports.DistanceResult{}
	}
	res, err := r.provider.DistanceAndDuration(r.ctx, origin, destination)
	if err != nil {
		return ports.DistanceResult{}
	}
	return res
}
