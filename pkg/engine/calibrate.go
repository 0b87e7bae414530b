package engine

import (
	"fmt"
	"math"
)

// ImpliedProb converts decimal odds to the market-implied probability.
// Odds at or below zero are not a price and fail loudly.
func ImpliedProb(odds float64) (float64, error) {
	if odds <= 0 {
		return 0, fmt.Errorf("implied probability undefined for odds %v", odds)
	}
	return 1 / odds, nil
}

// Calibrate shrinks a raw simulated probability toward the no-edge midpoint.
// Raw Monte Carlo probabilities overstate confidence; the shrinkage is a
// deliberate model decision and must not be skipped.
func Calibrate(p, strength float64) float64 {
	return 0.5 + (p-0.5)*strength
}

// CapEdge clamps an edge symmetrically to ±cap so no single signal can
// report an implausibly large advantage.
func CapEdge(e, cap float64) float64 {
	return math.Max(math.Min(e, cap), -cap)
}

// PercentilePosition returns where the line sits in the sample: the
// percentage of draws below it, rounded to one decimal.
func PercentilePosition(s Sample, line float64) float64 {
	return math.Round(s.FracBelow(line)*1000) / 10
}
