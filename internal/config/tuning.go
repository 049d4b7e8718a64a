package config

import "time"

// ScoringWeights are the rescue scoring coefficients. They are injected
// into the scorer rather than embedded so scoring stays auditable and
// independently testable.
type ScoringWeights struct {
	Alpha   float64 // distance factor
	Beta    float64 // stops remaining
	Gamma   float64 // capacity available
	Delta   float64 // cold-chain reliability
	Epsilon float64 // eta factor
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Alpha: 3.0, Beta: 1.5, Gamma: 2.0, Delta: 5.0, Epsilon: 2.0}
}

func ScoringWeightsFromEnv() ScoringWeights {
	d := DefaultScoringWeights()
	return ScoringWeights{
		Alpha:   GetFloat("SCORE_ALPHA", d.Alpha),
		Beta:    GetFloat("SCORE_BETA", d.Beta),
		Gamma:   GetFloat("SCORE_GAMMA", d.Gamma),
		Delta:   GetFloat("SCORE_DELTA", d.Delta),
		Epsilon: GetFloat("SCORE_EPSILON", d.Epsilon),
	}
}

// FailureThresholds parameterize telemetry failure detection and the
// minimum requirements for a truck to qualify as a rescuer.
type FailureThresholds struct {
	MaxTemperatureC         float64
	MinBatteryPercent       float64
	MinRescueBatteryPercent float64
	MinRescueCapacityKg     float64
}

func DefaultFailureThresholds() FailureThresholds {
	return FailureThresholds{
		MaxTemperatureC:         8,
		MinBatteryPercent:       5,
		MinRescueBatteryPercent: 15,
		MinRescueCapacityKg:     1,
	}
}

func FailureThresholdsFromEnv() FailureThresholds {
	d := DefaultFailureThresholds()
	return FailureThresholds{
		MaxTemperatureC:         GetFloat("FAIL_MAX_TEMP_C", d.MaxTemperatureC),
		MinBatteryPercent:       GetFloat("FAIL_MIN_BATTERY", d.MinBatteryPercent),
		MinRescueBatteryPercent: GetFloat("RESCUE_MIN_BATTERY", d.MinRescueBatteryPercent),
		MinRescueCapacityKg:     GetFloat("RESCUE_MIN_CAPACITY_KG", d.MinRescueCapacityKg),
	}
}

// OptimizerBudget bounds the local-search improvement phase so route
// building always returns the best solution found so far.
type OptimizerBudget struct {
	MaxIterations int
	MaxDuration   time.Duration
}

func DefaultOptimizerBudget() OptimizerBudget {
	return OptimizerBudget{MaxIterations: 200, MaxDuration: 2 * time.Second}
}

func OptimizerBudgetFromEnv() OptimizerBudget {
	d := DefaultOptimizerBudget()
	return OptimizerBudget{
		MaxIterations: GetInt("OPT_MAX_ITERATIONS", d.MaxIterations),
		MaxDuration:   GetDuration("OPT_MAX_DURATION", d.MaxDuration),
	}
}

// ETAPolicy makes the soft time-window semantics explicit: early arrival
// waits for the window to open, late arrival is flagged but still served.
type ETAPolicy struct {
	ServiceTime       time.Duration
	WaitForWindowOpen bool
}

func DefaultETAPolicy() ETAPolicy {
	return ETAPolicy{ServiceTime: 5 * time.Minute, WaitForWindowOpen: true}
}
