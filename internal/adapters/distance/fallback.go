package distance

import (
	"context"
	"time"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

// FallbackProvider prefers a live routing source and degrades to the
// geodesic estimate on error or timeout. Degradation is per pair and
// silent: the caller sees a Degraded result, never an error. A nil live
// provider means estimate-only operation.
type FallbackProvider struct {
	Live     ports.DistanceProvider
	Estimate *GeodesicEstimator
	Timeout  time.Duration
}

func NewFallbackProvider(live ports.DistanceProvider, estimate *GeodesicEstimator, timeout time.Duration) *FallbackProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FallbackProvider{Live: live, Estimate: estimate, Timeout: timeout}
}

func (p *FallbackProvider) DistanceAndDuration(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.DistanceResult, error) {
	if p.Live != nil {
		liveCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		r, err := p.Live.DistanceAndDuration(liveCtx, origin, destination)
		cancel()
		if err == nil {
			return r, nil
		}
	}

	return p.Estimate.DistanceAndDuration(ctx, origin, destination)
}

// DistancesFrom attempts one live batched lookup and fills every failed
// or missing pair with the geodesic estimate. A live batch failure never
// aborts the whole row.
func (p *FallbackProvider) DistancesFrom(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (map[domain.Coordinates]ports.DistanceResult, error) {
	out := make(map[domain.Coordinates]ports.DistanceResult, len(destinations))

	if mp, ok := p.Live.(ports.DistanceMatrixProvider); ok && p.Live != nil {
		liveCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		results, err := mp.DistancesFrom(liveCtx, origin, destinations)
		cancel()
		if err == nil {
			for k, v := range results {
				out[k] = v
			}
		}
	}

	for _, d := range destinations {
		if d == origin {
			continue
		}
		if _, ok := out[d]; ok {
			continue
		}
		r, err := p.Estimate.DistanceAndDuration(ctx, origin, d)
		if err != nil {
			return nil, err
		}
		out[d] = r
	}

	return out, nil
}
