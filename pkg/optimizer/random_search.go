package optimizer

import "math/rand"

// RandomSearch samples uniformly within the bounds after evaluating the
// initial solution.
type RandomSearch struct {
	config Config
	rng    *rand.Rand
	asked  int
	best   incumbent
}

// NewRandomSearch creates a new random search
func NewRandomSearch(cfg Config) Optimizer {
	rs := &RandomSearch{config: cfg}
	rs.Reset()
	return rs
}

func (rs *RandomSearch) Ask() []float64 {
	rs.asked++
	if rs.asked == 1 {
		return clone(rs.config.Initial)
	}
	x := make([]float64, rs.config.Dimension())
	for i := range x {
		x[i] = rs.config.Lower[i] + rs.rng.Float64()*(rs.config.Upper[i]-rs.config.Lower[i])
	}
	return x
}

func (rs *RandomSearch) Tell(x []float64, f float64) {
	rs.best.offer(x, f)
}

func (rs *RandomSearch) Best() ([]float64, float64) {
	return rs.best.get()
}

func (rs *RandomSearch) Reset() {
	rs.rng = rand.New(rand.NewSource(rs.config.Seed))
	rs.asked = 0
	rs.best = newIncumbent(rs.config.Initial)
}
