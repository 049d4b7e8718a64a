package services

import (
	"context"
	"fmt"
	"time"

	"fleet-rescue-service/internal/domain"
	"fleet-rescue-service/internal/ports"
)

// FleetPlan is the outcome of one planning pass: committed routes,
// their schedules, the deliveries nothing could absorb, and how many
// distance pairs came from the geodesic estimate.
type FleetPlan struct {
	Routes        *domain.RouteSet
	Schedules     map[int]*domain.Schedule
	Overflow      []*domain.Delivery
	DegradedPairs int
}

// Planner wires matrix building, route construction, and the ETA walk
// into one pass over the fleet.
type Planner struct {
	Provider    ports.DistanceProvider
	Builder     *RouteBuilder
	ETA         *ETAEngine
	Parallelism int
}

func NewPlanner(provider ports.DistanceProvider, builder *RouteBuilder, eta *ETAEngine) *Planner {
	return &Planner{
		Provider:    provider,
		Builder:     builder,
		ETA:         eta,
		Parallelism: 5,
	}
}

// Plan builds routes and schedules for the given trucks and deliveries
// starting at startAt. The distance matrix over all truck starts and
// delivery locations is fetched up front so construction and the ETA
// walk run without further I/O.
func (p *Planner) Plan(
	ctx context.Context,
	trucks []*domain.Truck,
	deliveries []*domain.Delivery,
	startAt time.Time,
) (*FleetPlan, error) {
	points := make([]domain.Coordinates, 0, len(trucks)+len(deliveries))
	for _, t := range trucks {
		points = append(points, t.Start)
	}
	for _, d := range deliveries {
		points = append(points, d.Location)
	}

	matrix, err := BuildMatrix(ctx, p.Provider, points, p.Parallelism)
	if err != nil {
		return nil, fmt.Errorf("plan fleet: %w", err)
	}

	routes, overflow, err := p.Builder.BuildRoutes(ctx, trucks, deliveries, matrix, startAt)
	if err != nil {
		return nil, err
	}

	schedules := make(map[int]*domain.Schedule, len(routes.Routes))
	for id, r := range routes.Routes {
		schedules[id] = p.ETA.ComputeETAs(r, startAt, matrix)
	}

	return &FleetPlan{
		Routes:        routes,
		Schedules:     schedules,
		Overflow:      overflow,
		DegradedPairs: matrix.DegradedPairs,
	}, nil
}
