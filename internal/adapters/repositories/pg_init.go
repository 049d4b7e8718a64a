package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Initialize the Postgres schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTrucksQuery := `
	CREATE TABLE IF NOT EXISTS trucks (
		truck_id INTEGER PRIMARY KEY,
		start_lon DOUBLE PRECISION NOT NULL,
		start_lat DOUBLE PRECISION NOT NULL,
		capacity_kg DOUBLE PRECISION NOT NULL,
		speed_kmh DOUBLE PRECISION NOT NULL,
		cold_chain_reliability DOUBLE PRECISION NOT NULL DEFAULT 0.5
	);
	`

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		delivery_id INTEGER PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		demand_kg DOUBLE PRECISION NOT NULL,
		window_start TIMESTAMPTZ NOT NULL,
		window_end TIMESTAMPTZ NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
    ON distance_cache(destination, origin);
	`

	statements := []string{
		createTrucksQuery,
		createDeliveriesQuery,
		createDistanceCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type TruckSeed struct {
	TruckID              int     `json:"truck_id"`
	StartLon             float64 `json:"start_lon"`
	StartLat             float64 `json:"start_lat"`
	CapacityKg           float64 `json:"capacity_kg"`
	SpeedKmh             float64 `json:"speed_kmh"`
	ColdChainReliability float64 `json:"cold_chain_reliability"`
}

type DeliverySeed struct {
	DeliveryID  int       `json:"delivery_id"`
	Lon         float64   `json:"lon"`
	Lat         float64   `json:"lat"`
	DemandKg    float64   `json:"demand_kg"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Priority    int       `json:"priority"`
}

type FleetSeed struct {
	Trucks     []TruckSeed    `json:"trucks"`
	Deliveries []DeliverySeed `json:"deliveries"`
}

// SeedFromJSON loads trucks and deliveries from a seed file, upserting
// by id so repeated runs stay idempotent.
func SeedFromJSON(db *sql.DB, seedPath string) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	raw, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", seedPath, err)
	}

	var seed FleetSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed: decode %q: %w", seedPath, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	truckStmt, err := tx.Prepare(`
	INSERT INTO trucks (truck_id, start_lon, start_lat, capacity_kg, speed_kmh, cold_chain_reliability)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (truck_id) DO UPDATE
	SET start_lon = EXCLUDED.start_lon,
		start_lat = EXCLUDED.start_lat,
		capacity_kg = EXCLUDED.capacity_kg,
		speed_kmh = EXCLUDED.speed_kmh,
		cold_chain_reliability = EXCLUDED.cold_chain_reliability;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare trucks insert: %w", err)
	}
	defer truckStmt.Close()

	for _, t := range seed.Trucks {
		if _, err := truckStmt.Exec(t.TruckID, t.StartLon, t.StartLat, t.CapacityKg, t.SpeedKmh, t.ColdChainReliability); err != nil {
			return fmt.Errorf("seed: insert truck %d: %w", t.TruckID, err)
		}
	}

	deliveryStmt, err := tx.Prepare(`
	INSERT INTO deliveries (delivery_id, lon, lat, demand_kg, window_start, window_end, priority)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (delivery_id) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		demand_kg = EXCLUDED.demand_kg,
		window_start = EXCLUDED.window_start,
		window_end = EXCLUDED.window_end,
		priority = EXCLUDED.priority;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare deliveries insert: %w", err)
	}
	defer deliveryStmt.Close()

	for _, d := range seed.Deliveries {
		if _, err := deliveryStmt.Exec(d.DeliveryID, d.Lon, d.Lat, d.DemandKg, d.WindowStart, d.WindowEnd, d.Priority); err != nil {
			return fmt.Errorf("seed: insert delivery %d: %w", d.DeliveryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
