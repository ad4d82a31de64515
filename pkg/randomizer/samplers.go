package randomizer

import "math"

// heavyTailFloor bounds the Cauchy denominator away from zero.
const heavyTailFloor = 1e-21

// Gaussian returns n standard normal values generated from seed by the
// Box-Muller transform over 2n uniform values. Exact zeros are replaced by
// 1e-99 without a diagnostic.
func Gaussian(n int, seed float64) ([]float64, Diagnostic) {
	if n <= 0 {
		return []float64{}, Diagnostic{}
	}
	r, diag := Uniform(2*n, seed)
	g := make([]float64, n)
	for i := range g {
		g[i] = boxMuller(r[i], r[i+n])
		if g[i] == 0 {
			g[i] = zeroReplacement
		}
	}
	return g, diag
}

// Cauchy returns n standard Cauchy values generated from seed as the ratio of
// two normal values built from 4n uniform values.
func Cauchy(n int, seed float64) ([]float64, Diagnostic) {
	if n <= 0 {
		return []float64{}, Diagnostic{}
	}
	r, diag := Uniform(4*n, seed)
	c := make([]float64, n)
	for i := range c {
		num := boxMuller(r[i], r[i+n])
		den := math.Abs(boxMuller(r[i+2*n], r[i+3*n]))
		c[i] = num / math.Max(heavyTailFloor, den)
	}
	return c, diag
}

func boxMuller(u1, u2 float64) float64 {
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
