package distance

import (
	"context"
	"sync"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

type pairKey struct {
	origin      domain.Coordinates
	destination domain.Coordinates
}

// MemoProvider caches results per ordered coordinate pair. A fresh memo
// is created for each routing computation so entries never go stale
// across planning runs. Safe for concurrent use.
type MemoProvider struct {
	next ports.DistanceProvider

	mu sync.Mutex
	m  map[pairKey]ports.DistanceResult
}

func NewMemoProvider(next ports.DistanceProvider) *MemoProvider {
	return &MemoProvider{next: next, m: make(map[pairKey]ports.DistanceResult)}
}

func (p *MemoProvider) DistanceAndDuration(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.DistanceResult, error) {
	key := pairKey{origin: origin, destination: destination}

	p.mu.Lock()
	if r, ok := p.m[key]; ok {
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()

	r, err := p.next.DistanceAndDuration(ctx, origin, destination)
	if err != nil {
		return ports.DistanceResult{}, err
	}

	p.mu.Lock()
	p.m[key] = r
	p.mu.Unlock()

	return r, nil
}
