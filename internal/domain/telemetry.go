package domain

import "time"

// Telemetry is one reported snapshot of a truck's cold-chain sensors.
// Snapshots are immutable once recorded; failure evaluation is a pure
// function over a single snapshot.
type Telemetry struct {
	TruckID         int
	TemperatureC    float64
	BatteryPercent  float64
	RefrigerationOn bool
	RecordedAt      time.Time
}
