package domain

import "time"

// Compliance classifies a stop's arrival against its time window.
type Compliance string

const (
	ComplianceOnTime Compliance = "on-time"
	ComplianceWaited Compliance = "waited"
	ComplianceLate   Compliance = "late"
)

// StopETA carries the computed arrival and departure for one stop.
type StopETA struct {
	DeliveryID        int
	ArriveAt          time.Time
	DepartAt          time.Time
	WaitSeconds       int
	Compliance        Compliance
	CumulativeMeters  int
	CumulativeSeconds int
}

// Schedule is the timestamped walk of one route from a start time.
// It is pure planning output and contains no side effects.
type Schedule struct {
	TruckID              int
	StartAt              time.Time
	Stops                []StopETA
	TotalDistanceMeters  int
	TotalDurationSeconds int
}
