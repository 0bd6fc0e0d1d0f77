package gridmap

import (
	"math"
	"testing"
)

func TestLogOddsToProbability(t *testing.T) {
	tests := []struct {
		logOdds float64
		want    float64
	}{
		{0, 0.5},
		{math.Log(3), 0.75},
		{-math.Log(3), 0.25},
		{math.Log(9), 0.9},
		{-math.Log(9), 0.1},
	}

	for _, tt := range tests {
		got := LogOddsToProbability(tt.logOdds)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("LogOddsToProbability(%g) = %g, want %g", tt.logOdds, got, tt.want)
		}
	}
}

func TestProbabilityToLogOdds(t *testing.T) {
	tests := []struct {
		probability float64
		want        float64
	}{
		{0.5, 0},
		{0.75, math.Log(3)},
		{0.25, -math.Log(3)},
	}

	for _, tt := range tests {
		got := ProbabilityToLogOdds(tt.probability)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ProbabilityToLogOdds(%g) = %g, want %g", tt.probability, got, tt.want)
		}
	}
}

// The conversions must invert each other on finite scores; this is what
// makes repeated observation sums recoverable as probabilities.
func TestLogOddsRoundTrip(t *testing.T) {
	for _, logOdds := range []float64{-25, -10, -2.5, -0.1, 0, 0.1, 2.5, 10, 25} {
		back := ProbabilityToLogOdds(LogOddsToProbability(logOdds))
		if math.Abs(back-logOdds) > 1e-9 {
			t.Errorf("round trip %g came back as %g", logOdds, back)
		}
	}
}

// Probabilities at the closed ends of the interval have no finite log-odds;
// the conversion passes the infinities through rather than validating.
func TestProbabilityToLogOdds_Extremes(t *testing.T) {
	if got := ProbabilityToLogOdds(1); !math.IsInf(got, 1) {
		t.Errorf("ProbabilityToLogOdds(1) = %g, want +Inf", got)
	}
	if got := ProbabilityToLogOdds(0); !math.IsInf(got, -1) {
		t.Errorf("ProbabilityToLogOdds(0) = %g, want -Inf", got)
	}
}

func TestClampLogOdds(t *testing.T) {
	tests := []struct {
		logOdds float64
		want    float64
	}{
		{0, 0},
		{12.5, 12.5},
		{-12.5, -12.5},
		{MaxLogOdds, MaxLogOdds},
		{-MaxLogOdds, -MaxLogOdds},
		{60, MaxLogOdds},
		{-60, -MaxLogOdds},
		{math.Inf(1), MaxLogOdds},
		{math.Inf(-1), -MaxLogOdds},
	}

	for _, tt := range tests {
		if got := clampLogOdds(tt.logOdds); got != tt.want {
			t.Errorf("clampLogOdds(%g) = %g, want %g", tt.logOdds, got, tt.want)
		}
	}
}
