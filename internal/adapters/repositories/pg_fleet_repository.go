package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-rescue-service/internal/domain"
)

// Postgres-backed implementation of the FleetRepository port.
type PGFleetRepository struct{ DB *sql.DB }

func NewPGFleetRepository(db *sql.DB) *PGFleetRepository {
	return &PGFleetRepository{DB: db}
}

// Return all trucks stored in the database.
func (s *PGFleetRepository) ListTrucks(ctx context.Context) ([]*domain.Truck, error) {
	if s.DB == nil {
		return nil, errors.New("pg fleet repository: DB is nil")
	}

	query := `
	SELECT
		truck_id,
		start_lon,
		start_lat,
		capacity_kg,
		speed_kmh,
		cold_chain_reliability
	FROM trucks
	ORDER BY truck_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query trucks table: %w", err)
	}
	defer rows.Close()

	trucks := make([]*domain.Truck, 0, 16)
	for rows.Next() {
		var id int
		var lon, lat, capacity, speed, reliability float64
		if err := rows.Scan(&id, &lon, &lat, &capacity, &speed, &reliability); err != nil {
			return nil, fmt.Errorf("list trucks: scan row: %w", err)
		}
		t := domain.NewTruck(id, capacity, speed, domain.Coordinates{Lon: lon, Lat: lat})
		t.ColdChainReliability = reliability
		trucks = append(trucks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: row iteration: %w", err)
	}

	return trucks, nil
}

// Return all deliveries stored in the database.
func (s *PGFleetRepository) ListDeliveries(ctx context.Context) ([]*domain.Delivery, error) {
	if s.DB == nil {
		return nil, errors.New("pg fleet repository: DB is nil")
	}

	query := `
	SELECT
		delivery_id,
		lon,
		lat,
		demand_kg,
		window_start,
		window_end,
		priority
	FROM deliveries
	ORDER BY delivery_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	deliveries := make([]*domain.Delivery, 0, 64)
	for rows.Next() {
		var d domain.Delivery
		var lon, lat float64
		if err := rows.Scan(&d.DeliveryID, &lon, &lat, &d.DemandKg, &d.Window.Start, &d.Window.End, &d.Priority); err != nil {
			return nil, fmt.Errorf("list deliveries: scan row: %w", err)
		}
		d.Location = domain.Coordinates{Lon: lon, Lat: lat}
		d.Status = domain.DeliveryPending
		deliveries = append(deliveries, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries: row iteration: %w", err)
	}

	return deliveries, nil
}
