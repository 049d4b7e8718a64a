package distance

import (
	"context"
	"errors"
	"fmt"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   int
	Seconds  int
}

// MockDistanceProvider serves fixed pair results in tests. With Fail set
// it rejects every lookup, which exercises the geodesic fallback path.
type MockDistanceProvider struct {
	m    map[pairKey]ports.DistanceResult
	Fail bool
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[pairKey]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[pairKey{origin: p.From, destination: p.To}] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) DistanceAndDuration(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	if p.Fail {
		return ports.DistanceResult{}, errors.New("mock provider unavailable")
	}

	r, ok := p.m[pairKey{origin: origin, destination: destination}]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %s -> %s", origin.Key(), destination.Key())
	}

	return r, nil
}
