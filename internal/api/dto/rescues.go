package dto

import "time"

type RescueRequest struct {
	TruckID int `json:"truck_id"`
}

type CompleteRescueRequest struct {
	RescueID string `json:"rescue_id"`
}

type RescuerResponse struct {
	TruckID        int     `json:"truck_id"`
	AllocatedKg    float64 `json:"allocated_kg"`
	LoadPercent    float64 `json:"load_percent"`
	DistanceMeters int     `json:"distance_meters"`
	EtaSeconds     int     `json:"eta_seconds"`
	DeliveryIDs    []int   `json:"delivery_ids"`
}

type RescueResponse struct {
	RescueID       string            `json:"rescue_id"`
	FailedTruckID  int               `json:"failed_truck_id"`
	Status         string            `json:"status"`
	Split          bool              `json:"split"`
	EtaPreserved   bool              `json:"eta_preserved"`
	FailureReasons []string          `json:"failure_reasons,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Rescuers       []RescuerResponse `json:"rescuers,omitempty"`
}

type ListRescuesResponse struct {
	Rescues []RescueResponse `json:"rescues"`
}
