package optimizer

import (
	"math"

	"github.com/brianbland/noisifier/pkg/problem"
)

// Optimizer is the interface that all search algorithms must implement.
// Every Ask is followed by exactly one Tell with the same point.
type Optimizer interface {
	// Ask returns the next point to evaluate
	Ask() []float64

	// Tell reports the observed value of the last asked point
	Tell(x []float64, f float64)

	// Best returns the best point told so far and its observed value
	Best() ([]float64, float64)

	// Reset restores the initial state, including the random source
	Reset()
}

// Config represents the configuration shared by all optimizers
type Config struct {
	Lower       []float64
	Upper       []float64
	Initial     []float64
	InitialStep float64
	Seed        int64
}

// ConfigFor derives an optimizer configuration from a problem's bounds
func ConfigFor(p problem.Problem, seed int64) Config {
	lower, upper := p.LowerBounds(), p.UpperBounds()
	width := math.Inf(1)
	for i := range lower {
		width = math.Min(width, upper[i]-lower[i])
	}
	return Config{
		Lower:       lower,
		Upper:       upper,
		Initial:     p.InitialSolution(),
		InitialStep: width / 4,
		Seed:        seed,
	}
}

// Dimension returns the search space dimension
func (c Config) Dimension() int {
	return len(c.Initial)
}

// Clamp projects x onto the box bounds in place
func (c Config) Clamp(x []float64) []float64 {
	for i := range x {
		if i < len(c.Lower) && x[i] < c.Lower[i] {
			x[i] = c.Lower[i]
		}
		if i < len(c.Upper) && x[i] > c.Upper[i] {
			x[i] = c.Upper[i]
		}
	}
	return x
}

// incumbent tracks the best told point
type incumbent struct {
	x []float64
	f float64
}

func newIncumbent(initial []float64) incumbent {
	return incumbent{x: clone(initial), f: math.Inf(1)}
}

func (b *incumbent) offer(x []float64, f float64) bool {
	if f < b.f {
		b.x = clone(x)
		b.f = f
		return true
	}
	return false
}

func (b incumbent) get() ([]float64, float64) {
	return clone(b.x), b.f
}

func clone(x []float64) []float64 {
	return append([]float64(nil), x...)
}
