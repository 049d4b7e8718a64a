package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

func newTestCache(t *testing.T) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisDistanceCache(client, time.Hour), mr
}

func TestRedisDistanceCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	origin := domain.Coordinates{Lon: 10, Lat: 50}
	d1 := domain.Coordinates{Lon: 10.1, Lat: 50}
	d2 := domain.Coordinates{Lon: 10.2, Lat: 50}

	if err := c.PutMany(ctx, origin, map[domain.Coordinates]ports.DistanceResult{
		d1: {DistanceMeters: 1500, DurationSeconds: 180},
		d2: {DistanceMeters: 2600, DurationSeconds: 300},
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, origin, []domain.Coordinates{d1, d2})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("hits = %d, want 2", len(got))
	}
	if r := got[d1]; r.DistanceMeters != 1500 || r.DurationSeconds != 180 {
		t.Fatalf("d1 = %+v, want 1500 m / 180 s", r)
	}
}

func TestRedisDistanceCacheMissesAreAbsent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	origin := domain.Coordinates{Lon: 10, Lat: 50}
	cached := domain.Coordinates{Lon: 10.1, Lat: 50}
	missing := domain.Coordinates{Lon: 10.9, Lat: 50}

	if err := c.PutMany(ctx, origin, map[domain.Coordinates]ports.DistanceResult{
		cached: {DistanceMeters: 1500, DurationSeconds: 180},
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, origin, []domain.Coordinates{cached, missing})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %d, want 1", len(got))
	}
	if _, ok := got[missing]; ok {
		t.Fatalf("missing pair present in result")
	}
}

func TestRedisDistanceCacheMalformedValueIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	origin := domain.Coordinates{Lon: 10, Lat: 50}
	dest := domain.Coordinates{Lon: 10.1, Lat: 50}

	if err := mr.Set(distKey(origin, dest), "not-a-distance"); err != nil {
		t.Fatalf("seed malformed value: %v", err)
	}

	got, err := c.GetMany(ctx, origin, []domain.Coordinates{dest})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("malformed entry served as a hit: %+v", got)
	}
}

func TestRedisDistanceCacheSetsTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	origin := domain.Coordinates{Lon: 10, Lat: 50}
	dest := domain.Coordinates{Lon: 10.1, Lat: 50}

	if err := c.PutMany(ctx, origin, map[domain.Coordinates]ports.DistanceResult{
		dest: {DistanceMeters: 1500, DurationSeconds: 180},
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if ttl := mr.TTL(distKey(origin, dest)); ttl != time.Hour {
		t.Fatalf("ttl = %s, want 1h", ttl)
	}

	// Past the TTL the entry is gone.
	mr.FastForward(2 * time.Hour)
	got, err := c.GetMany(ctx, origin, []domain.Coordinates{dest})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expired entry still served: %+v", got)
	}
}
