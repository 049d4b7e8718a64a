package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/platform/obs"
	"fleet-rescue-service/internal/ports"
)

// PGDistanceCache is a Postgres-backed cache for origin->destination
// distance results, keyed by the textual coordinate form.
type PGDistanceCache struct {
	DB *sql.DB
}

func NewPGDistanceCache(db *sql.DB) *PGDistanceCache {
	return &PGDistanceCache{DB: db}
}

// Fetch cached distances for one origin and multiple destinations.
func (s *PGDistanceCache) GetMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ map[domain.Coordinates]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if len(destinations) == 0 {
		return map[domain.Coordinates]ports.DistanceResult{}, nil
	}

	byKey := make(map[string]domain.Coordinates, len(destinations))
	keys := make([]string, 0, len(destinations))
	for _, d := range destinations {
		k := d.Key()
		if _, ok := byKey[k]; ok {
			continue
		}
		byKey[k] = d
		keys = append(keys, k)
	}

	q := `
	SELECT destination, distance_meters, duration_seconds
    FROM distance_cache
    WHERE origin = $1
        AND destination = ANY($2::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, origin.Key(), keys)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Coordinates]ports.DistanceResult, len(keys))
	for rows.Next() {
		var dest string
		var meters, seconds int
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		coord, ok := byKey[dest]
		if !ok {
			continue
		}
		out[coord] = ports.DistanceResult{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached distance results for a single origin.
func (s *PGDistanceCache) PutMany(
	ctx context.Context,
	origin domain.Coordinates,
	results map[domain.Coordinates]ports.DistanceResult,
) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		if _, err := stmt.ExecContext(ctx, origin.Key(), dest.Key(), r.DistanceMeters, r.DurationSeconds); err != nil {
			return fmt.Errorf("insert distance cache dest=%s: %w", dest.Key(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}
