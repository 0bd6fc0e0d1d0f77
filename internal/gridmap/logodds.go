package gridmap

import "math"

// MaxLogOdds bounds the stored log-odds score of every cell. Update clamps
// each result to [-MaxLogOdds, +MaxLogOdds] so repeated observations of the
// same state cannot saturate a cell beyond recovery.
const MaxLogOdds = 50.0

// LogOddsToProbability converts a log-odds score back to a probability:
// p = e^l / (1 + e^l). Inverse of ProbabilityToLogOdds on finite inputs.
func LogOddsToProbability(logOdds float64) float64 {
	odds := math.Exp(logOdds)
	return odds / (1.0 + odds)
}

// ProbabilityToLogOdds converts a probability to its log-odds score:
// l = ln(p / (1-p)). Log-odds are additive, so repeated independent
// observations of a cell accumulate by summation (the recursive Bayes
// update in log form).
//
// Inputs outside the open interval (0,1) are not validated and produce
// ±Inf or NaN; keeping them out is the caller's responsibility.
func ProbabilityToLogOdds(probability float64) float64 {
	odds := probability / (1.0 - probability)
	return math.Log(odds)
}

// clampLogOdds saturates a log-odds score at the storage bound.
func clampLogOdds(logOdds float64) float64 {
	if logOdds > +MaxLogOdds {
		return +MaxLogOdds
	}
	if logOdds < -MaxLogOdds {
		return -MaxLogOdds
	}
	return logOdds
}
