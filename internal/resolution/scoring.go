package resolution

import (
	"math"

	"alphapicks/internal/ledger"
)

// Labels attached to awarded scores.
const (
	LabelPerfect          = "perfect"
	LabelExcellent        = "excellent"
	LabelGreat            = "great"
	LabelGood             = "good"
	LabelFair             = "fair"
	LabelCorrectDirection = "correct_direction"
	LabelWrongDirection   = "wrong_direction"
)

// WrongDirectionPoints is the flat consolation award when the actual move
// went against the pick, regardless of magnitude.
const WrongDirectionPoints uint64 = 10

type scoreTier struct {
	maxError float64
	points   uint64
	label    string
}

// Tiers are checked in ascending error order; error is the gap between the
// predicted and actual move magnitudes, in percentage points.
var scoreTiers = []scoreTier{
	{maxError: 1, points: 1000, label: LabelPerfect},
	{maxError: 2, points: 750, label: LabelExcellent},
	{maxError: 5, points: 500, label: LabelGreat},
	{maxError: 10, points: 250, label: LabelGood},
	{maxError: 20, points: 100, label: LabelFair},
}

// ActualChangePct computes the realized percentage move from entry to
// resolution price.
func ActualChangePct(entryPrice, resolutionPrice float64) float64 {
	return (resolutionPrice - entryPrice) / entryPrice * 100
}

// Score awards points for one resolved pick. A top pick expects a
// non-negative move, a worst pick expects a negative one; a direction
// mismatch short-circuits to the flat wrong-direction award.
func Score(category ledger.Category, predictedPct, actualPct float64) (uint64, string) {
	expectsGain := category == ledger.CategoryTop
	if expectsGain != (actualPct >= 0) {
		return WrongDirectionPoints, LabelWrongDirection
	}

	errorPct := math.Abs(math.Abs(predictedPct) - math.Abs(actualPct))
	for _, tier := range scoreTiers {
		if errorPct <= tier.maxError {
			return tier.points, tier.label
		}
	}
	return 50, LabelCorrectDirection
}
