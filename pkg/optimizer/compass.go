package optimizer

import "math"

// CompassSearch polls the 2n axis directions around the incumbent and halves
// the step after a full unsuccessful poll. Its axis-aligned moves are the
// pattern most likely to hit correlated noise seeds.
type CompassSearch struct {
	config Config
	center []float64
	fc     float64
	step   float64
	dir    int
	best   incumbent
}

// NewCompassSearch creates a new compass search
func NewCompassSearch(cfg Config) Optimizer {
	cs := &CompassSearch{config: cfg}
	cs.Reset()
	return cs
}

func (cs *CompassSearch) Ask() []float64 {
	x := clone(cs.center)
	if math.IsInf(cs.fc, 1) {
		return x
	}
	i := cs.dir / 2
	if cs.dir%2 == 0 {
		x[i] += cs.step
	} else {
		x[i] -= cs.step
	}
	return cs.config.Clamp(x)
}

func (cs *CompassSearch) Tell(x []float64, f float64) {
	cs.best.offer(x, f)

	if math.IsInf(cs.fc, 1) {
		cs.center = clone(x)
		cs.fc = f
		return
	}
	if f < cs.fc {
		cs.center = clone(x)
		cs.fc = f
		cs.dir = 0
		return
	}
	cs.dir++
	if cs.dir == 2*len(cs.center) {
		cs.dir = 0
		cs.step /= 2
	}
}

func (cs *CompassSearch) Best() ([]float64, float64) {
	return cs.best.get()
}

// Step returns the current poll step
func (cs *CompassSearch) Step() float64 {
	return cs.step
}

func (cs *CompassSearch) Reset() {
	cs.center = clone(cs.config.Initial)
	cs.fc = math.Inf(1)
	cs.step = cs.config.InitialStep
	cs.dir = 0
	cs.best = newIncumbent(cs.config.Initial)
}
