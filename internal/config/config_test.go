package config

import (
	"testing"
	"time"
)

func TestGetFallbacks(t *testing.T) {
	if got := Get("FLEET_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("Get = %q, want fallback", got)
	}

	t.Setenv("FLEET_TEST_SET", "value")
	if got := Get("FLEET_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("Get = %q, want value", got)
	}
}

func TestGetFloatIgnoresGarbage(t *testing.T) {
	t.Setenv("FLEET_TEST_FLOAT", "not-a-number")
	if got := GetFloat("FLEET_TEST_FLOAT", 1.5); got != 1.5 {
		t.Fatalf("GetFloat = %v, want fallback 1.5", got)
	}

	t.Setenv("FLEET_TEST_FLOAT", "2.75")
	if got := GetFloat("FLEET_TEST_FLOAT", 1.5); got != 2.75 {
		t.Fatalf("GetFloat = %v, want 2.75", got)
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("FLEET_TEST_DUR", "90s")
	if got := GetDuration("FLEET_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("GetDuration = %s, want 90s", got)
	}

	t.Setenv("FLEET_TEST_DUR", "ninety seconds")
	if got := GetDuration("FLEET_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("GetDuration = %s, want fallback 1s", got)
	}
}

func TestScoringWeightsFromEnv(t *testing.T) {
	d := DefaultScoringWeights()
	if d.Alpha != 3.0 || d.Beta != 1.5 || d.Gamma != 2.0 || d.Delta != 5.0 || d.Epsilon != 2.0 {
		t.Fatalf("defaults = %+v", d)
	}

	t.Setenv("SCORE_ALPHA", "4.5")
	w := ScoringWeightsFromEnv()
	if w.Alpha != 4.5 {
		t.Fatalf("Alpha = %v, want 4.5 from env", w.Alpha)
	}
	if w.Delta != 5.0 {
		t.Fatalf("Delta = %v, want default 5.0", w.Delta)
	}
}

func TestFailureThresholdsFromEnv(t *testing.T) {
	d := DefaultFailureThresholds()
	if d.MaxTemperatureC != 8 || d.MinBatteryPercent != 5 || d.MinRescueBatteryPercent != 15 {
		t.Fatalf("defaults = %+v", d)
	}

	t.Setenv("FAIL_MAX_TEMP_C", "6")
	th := FailureThresholdsFromEnv()
	if th.MaxTemperatureC != 6 {
		t.Fatalf("MaxTemperatureC = %v, want 6 from env", th.MaxTemperatureC)
	}
}

func TestOptimizerBudgetFromEnv(t *testing.T) {
	t.Setenv("OPT_MAX_ITERATIONS", "50")
	t.Setenv("OPT_MAX_DURATION", "500ms")

	b := OptimizerBudgetFromEnv()
	if b.MaxIterations != 50 {
		t.Fatalf("MaxIterations = %d, want 50", b.MaxIterations)
	}
	if b.MaxDuration != 500*time.Millisecond {
		t.Fatalf("MaxDuration = %s, want 500ms", b.MaxDuration)
	}
}
