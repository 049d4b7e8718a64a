package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/platform/obs"
	"fleet-rescue-service/internal/ports"
)

// ORSProvider implements DistanceProvider using OpenRouteService.
//
// It coordinates:
//   - Persistent distance caching (optional)
//   - External matrix API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	cache   ports.DistanceCache
}

func NewORSProvider(apiKey string, cache ports.DistanceCache) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-hgv",
		cache:   cache,
	}, nil
}

// Delegate to the batched path to reuse caching and matrix logic.
func (o *ORSProvider) DistanceAndDuration(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.DistanceResult, error) {
	if !origin.Valid() || !destination.Valid() {
		return ports.DistanceResult{}, errors.New("get ORS distance: coordinates out of range")
	}

	results, err := o.DistancesFrom(ctx, origin, []domain.Coordinates{destination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf(
			"get distances %s -> %s: %w",
			origin.Key(), destination.Key(), err,
		)
	}

	result, ok := results[destination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("no distance result for %s -> %s", origin.Key(), destination.Key())
	}

	return result, nil
}

// Compute distances from a single origin to many destinations.
func (o *ORSProvider) DistancesFrom(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ map[domain.Coordinates]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.DistancesFrom")(&err)

	if !origin.Valid() {
		return nil, errors.New("origin coordinates out of range")
	}

	if len(destinations) == 0 {
		return map[domain.Coordinates]ports.DistanceResult{}, nil
	}

	seen := make(map[domain.Coordinates]struct{}, len(destinations))
	destList := make([]domain.Coordinates, 0, len(destinations))
	for _, d := range destinations {
		if d == origin {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}

		seen[d] = struct{}{}
		destList = append(destList, d)
	}

	if len(destList) == 0 {
		return map[domain.Coordinates]ports.DistanceResult{}, nil
	}

	hits := make(map[domain.Coordinates]ports.DistanceResult)
	// Check the persistent cache before issuing external API calls.
	if o.cache != nil {
		var err error
		hits, err = o.cache.GetMany(ctx, origin, destList)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
	}

	misses := make([]domain.Coordinates, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
		}
	}

	if len(misses) == 0 {
		return hits, nil
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, origin, misses)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	for _, d := range misses {
		if _, ok := fetched[d]; !ok {
			return nil, fmt.Errorf("ORS matrix service did not return destination %s", d.Key())
		}
	}

	if o.cache != nil {
		if err := o.cache.PutMany(ctx, origin, fetched); err != nil {
			log.Printf("distance cache write failed: %v", err)
		}
	}

	out := make(map[domain.Coordinates]ports.DistanceResult, len(hits)+len(fetched))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}
