package distance

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

// countingProvider counts lookups so memoization can be asserted.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	next  ports.DistanceProvider
}

func (p *countingProvider) DistanceAndDuration(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.next.DistanceAndDuration(ctx, origin, destination)
}

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of latitude is about 111.2 km.
	a := domain.Coordinates{Lon: 10, Lat: 50}
	b := domain.Coordinates{Lon: 10, Lat: 51}

	meters := Haversine(a, b)
	if math.Abs(meters-111200) > 1000 {
		t.Fatalf("haversine = %.0f m, want ~111200", meters)
	}

	if got := Haversine(a, a); got != 0 {
		t.Fatalf("same-point distance = %v, want 0", got)
	}
}

func TestGeodesicEstimateAppliesRoadFactorAndSpeed(t *testing.T) {
	est := NewGeodesicEstimator(40, 1.3)
	a := domain.Coordinates{Lon: 10, Lat: 50}
	b := domain.Coordinates{Lon: 10, Lat: 51}

	r, err := est.DistanceAndDuration(context.Background(), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Degraded {
		t.Fatalf("estimate not marked degraded")
	}

	wantMeters := Haversine(a, b) * 1.3
	if math.Abs(float64(r.DistanceMeters)-wantMeters) > 1 {
		t.Fatalf("distance = %d m, want ~%.0f", r.DistanceMeters, wantMeters)
	}

	wantSeconds := wantMeters / (40 * 1000 / 3600)
	if math.Abs(float64(r.DurationSeconds)-wantSeconds) > 1 {
		t.Fatalf("duration = %d s, want ~%.0f", r.DurationSeconds, wantSeconds)
	}
}

func TestFallbackUsesLiveWhenHealthy(t *testing.T) {
	a := domain.Coordinates{Lon: 10, Lat: 50}
	b := domain.Coordinates{Lon: 10.1, Lat: 50}

	live := NewMockDistanceProvider([]MockPair{{From: a, To: b, Meters: 4242, Seconds: 360}})
	p := NewFallbackProvider(live, NewGeodesicEstimator(40, 1.3), time.Second)

	r, err := p.DistanceAndDuration(context.Background(), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DistanceMeters != 4242 || r.Degraded {
		t.Fatalf("result = %+v, want live 4242 m and not degraded", r)
	}
}

func TestFallbackDegradesPerPair(t *testing.T) {
	a := domain.Coordinates{Lon: 10, Lat: 50}
	b := domain.Coordinates{Lon: 10.1, Lat: 50}

	dead := NewMockDistanceProvider(nil)
	dead.Fail = true
	p := NewFallbackProvider(dead, NewGeodesicEstimator(40, 1.3), time.Second)

	r, err := p.DistanceAndDuration(context.Background(), a, b)
	if err != nil {
		t.Fatalf("fallback surfaced an error: %v", err)
	}
	if !r.Degraded || r.DistanceMeters <= 0 {
		t.Fatalf("result = %+v, want positive degraded estimate", r)
	}
}

func TestFallbackBatchFillsMissingPairs(t *testing.T) {
	a := domain.Coordinates{Lon: 10, Lat: 50}
	b := domain.Coordinates{Lon: 10.1, Lat: 50}
	c := domain.Coordinates{Lon: 10.2, Lat: 50}

	dead := NewMockDistanceProvider(nil)
	dead.Fail = true
	p := NewFallbackProvider(dead, NewGeodesicEstimator(40, 1.3), time.Second)

	out, err := p.DistancesFrom(context.Background(), a, []domain.Coordinates{b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("batch returned %d pairs, want 2", len(out))
	}
	for dest, r := range out {
		if !r.Degraded {
			t.Fatalf("pair to %s not degraded", dest.Key())
		}
	}
}

func TestMemoProviderLooksUpEachPairOnce(t *testing.T) {
	a := domain.Coordinates{Lon: 10, Lat: 50}
	b := domain.Coordinates{Lon: 10.1, Lat: 50}

	counting := &countingProvider{next: NewGeodesicEstimator(40, 1.3)}
	memo := NewMemoProvider(counting)

	first, err := memo.DistanceAndDuration(context.Background(), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := memo.DistanceAndDuration(context.Background(), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatalf("memoized result differs: %+v vs %+v", first, second)
	}
	if counting.calls != 1 {
		t.Fatalf("underlying provider called %d times, want 1", counting.calls)
	}

	// Reverse direction is a distinct ordered pair.
	if _, err := memo.DistanceAndDuration(context.Background(), b, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counting.calls != 2 {
		t.Fatalf("underlying provider called %d times after reverse lookup, want 2", counting.calls)
	}
}

func TestMemoProviderDoesNotCacheErrors(t *testing.T) {
	a := domain.Coordinates{Lon: 10, Lat: 50}
	b := domain.Coordinates{Lon: 10.1, Lat: 50}

	dead := NewMockDistanceProvider(nil)
	dead.Fail = true
	counting := &countingProvider{next: dead}
	memo := NewMemoProvider(counting)

	for i := 0; i < 2; i++ {
		if _, err := memo.DistanceAndDuration(context.Background(), a, b); err == nil {
			t.Fatalf("expected error from failing provider")
		}
	}

	if counting.calls != 2 {
		t.Fatalf("underlying provider called %d times, want 2 (failures must not be memoized)", counting.calls)
	}
}
