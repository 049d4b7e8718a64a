package services

import (
	"fmt"

	"fleet-rescue-service/internal/config"
	"fleet-rescue-service/internal/domain"
)

// EvaluateFailure checks one telemetry snapshot against the failure
// criteria: cargo temperature above threshold, refrigeration off, or
// battery below threshold. The three are evaluated independently and
// every true condition is reported as its own reason. Pure function;
// identical input yields identical output.
func EvaluateFailure(t domain.Telemetry, thresholds config.FailureThresholds) (domain.TruckStatus, []string) {
	var reasons []string

	if t.TemperatureC > thresholds.MaxTemperatureC {
		reasons = append(reasons, fmt.Sprintf("temperature %.1fC above %.1fC", t.TemperatureC, thresholds.MaxTemperatureC))
	}
	if !t.RefrigerationOn {
		reasons = append(reasons, "refrigeration off")
	}
	if t.BatteryPercent < thresholds.MinBatteryPercent {
		reasons = append(reasons, fmt.Sprintf("battery %.1f%% below %.1f%%", t.BatteryPercent, thresholds.MinBatteryPercent))
	}

	if len(reasons) > 0 {
		return domain.TruckFailed, reasons
	}
	return domain.TruckOperational, nil
}
