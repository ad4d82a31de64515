package randomizer

import "math"

// Weights applied to the first two coordinates. Unequal, irregular weights
// keep axis-aligned and symmetric moves (coordinate search) from landing on
// the same seed over and over.
const (
	seedWeight0 = 1.23468
	seedWeight1 = 2.34579

	seedOffset = 1.36247e-17
	maxSeed    = 1e21
)

// DeriveSeed maps the first two entries of x and a stream index to a positive
// seed in (0, 1e21]. Missing entries count as 0. A non-finite result is
// replaced by 1 and flagged in the returned Diagnostic.
func DeriveSeed(x []float64, stream int) (float64, Diagnostic) {
	x0, x1 := coordinate(x, 0), coordinate(x, 1)

	// the float64 conversions force rounding of each product so that no
	// fused multiply-add changes the result on any architecture
	freezer := float64(stream+1) * (1 + float64(seedWeight0*x0) + float64(seedWeight1*x1))
	if freezer < 0 {
		freezer = -freezer
	}
	s := freezer + 1/(freezer+seedOffset)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 1, Diagnostic{NonFiniteSeed: true}
	}
	for s > maxSeed {
		s /= 9
	}
	return s, Diagnostic{}
}

func coordinate(x []float64, i int) float64 {
	if i < len(x) {
		return x[i]
	}
	return 0
}
