package dto

import "time"

type PlanRequest struct {
	DepartAt *time.Time `json:"depart_at"`
}

type PlanStopResponse struct {
	DeliveryID  int       `json:"delivery_id"`
	Lon         float64   `json:"lon"`
	Lat         float64   `json:"lat"`
	DemandKg    float64   `json:"demand_kg"`
	ArriveAt    time.Time `json:"arrive_at"`
	DepartAt    time.Time `json:"depart_at"`
	WaitSeconds int       `json:"wait_seconds"`
	Compliance  string    `json:"compliance"`
	Pickup      bool      `json:"pickup,omitempty"`
}

type RouteResponse struct {
	TruckID              int                `json:"truck_id"`
	Feasible             bool               `json:"feasible"`
	TotalDistanceMeters  int                `json:"total_distance_meters"`
	TotalDurationSeconds int                `json:"total_duration_seconds"`
	Stops                []PlanStopResponse `json:"stops"`
}

type PlanResponse struct {
	DepartAt            time.Time       `json:"depart_at"`
	Routes              []RouteResponse `json:"routes"`
	OverflowDeliveryIDs []int           `json:"overflow_delivery_ids"`
	DegradedPairs       int             `json:"degraded_pairs"`
}
