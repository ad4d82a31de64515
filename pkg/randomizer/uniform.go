package randomizer

import "math"

// Constants of the Park-Miller minimal standard generator evaluated with
// Schrage's method, plus the Bays-Durham shuffle table. They reproduce the
// legacy BBOB uniform generator bit for bit and must not change.
const (
	lehmerMultiplier = 16807.
	lehmerQuotient   = 127773.
	lehmerRemainder  = 2836.
	lehmerModulus    = 2147483647.

	shuffleDivisor = 67108865.
	shuffleSize    = 32
	warmUp         = 40
	burnIn         = 2

	zeroReplacement = 1e-99
)

// Uniform returns n values in (0, 1) generated from seed. The result depends
// on n and seed only. Values that come out exactly 0 are replaced by 1e-99
// and counted in the Diagnostic.
func Uniform(n int, seed float64) ([]float64, Diagnostic) {
	if n <= 0 {
		return []float64{}, Diagnostic{}
	}
	if seed < 0 {
		seed = -seed
	}
	if seed < 1 {
		seed++
	}

	var table [shuffleSize]float64
	for i := warmUp - 1; i >= 0; i-- {
		seed = lehmerStep(seed)
		if i < shuffleSize {
			table[i] = seed
		}
	}
	previous := table[0]

	r := make([]float64, n)
	for i := -burnIn; i < n; i++ {
		seed = lehmerStep(seed)
		k := shuffleIndex(previous)
		previous = table[k]
		table[k] = seed
		if i >= 0 {
			r[i] = previous / lehmerModulus
		}
	}

	var diag Diagnostic
	for i := range r {
		if r[i] == 0 {
			r[i] = zeroReplacement
			diag.ZeroCorrections++
		}
	}
	return r, diag
}

// lehmerStep advances the recurrence once. Quotients truncate toward zero as
// the legacy implementation does; for very large seeds the state is briefly
// negative and floor would give different numbers.
func lehmerStep(seed float64) float64 {
	q := math.Trunc(seed / lehmerQuotient)
	next := float64(lehmerMultiplier*(seed-float64(q*lehmerQuotient))) - float64(lehmerRemainder*q)
	if next < 0 {
		next += lehmerModulus
	}
	return next
}

// shuffleIndex picks the table slot from the previous draw. Out-of-range
// slots, reachable only from the transient negative states of huge seeds,
// wrap around the table.
func shuffleIndex(previous float64) int {
	k := int(math.Trunc(previous/shuffleDivisor)) % shuffleSize
	if k < 0 {
		k += shuffleSize
	}
	return k
}
