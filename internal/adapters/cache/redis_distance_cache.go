package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/platform/obs"
	"fleet-rescue-service/internal/ports"
)

// RedisDistanceCache stores distance results in Redis with a TTL.
// Entries are keyed dist:{origin}:{destination} and hold
// "{meters}|{seconds}".
type RedisDistanceCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDistanceCache{Client: client, TTL: ttl}
}

func distKey(origin, destination domain.Coordinates) string {
	return fmt.Sprintf("dist:%s:%s", origin.Key(), destination.Key())
}

// Fetch cached distances for one origin and multiple destinations.
func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ map[domain.Coordinates]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if c.Client == nil {
		return nil, errors.New("redis distance cache: client is nil")
	}

	if len(destinations) == 0 {
		return map[domain.Coordinates]ports.DistanceResult{}, nil
	}

	keys := make([]string, len(destinations))
	for i, d := range destinations {
		keys[i] = distKey(origin, d)
	}

	values, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis distance cache: mget: %w", err)
	}

	out := make(map[domain.Coordinates]ports.DistanceResult, len(destinations))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // miss
		}

		var meters, seconds int
		if _, err := fmt.Sscanf(s, "%d|%d", &meters, &seconds); err != nil {
			continue // treat malformed entries as misses
		}
		out[destinations[i]] = ports.DistanceResult{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}

	return out, nil
}

// Store many cached distance results for a single origin.
func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin domain.Coordinates,
	results map[domain.Coordinates]ports.DistanceResult,
) error {
	if c.Client == nil {
		return errors.New("redis distance cache: client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := c.Client.Pipeline()
	for dest, r := range results {
		val := fmt.Sprintf("%d|%d", r.DistanceMeters, r.DurationSeconds)
		pipe.Set(ctx, distKey(origin, dest), val, c.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis distance cache: pipeline exec: %w", err)
	}

	return nil
}
