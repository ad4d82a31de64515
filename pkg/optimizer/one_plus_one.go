package optimizer

import (
	"math"
	"math/rand"
)

// OnePlusOneConfig represents the configuration for the (1+1)-ES
type OnePlusOneConfig struct {
	Config
	// SuccessFactor multiplies the step size after an improvement. Failures
	// divide it by SuccessFactor^(1/4), which keeps the step size stable at a
	// success rate of one fifth.
	SuccessFactor float64
	MinStep       float64
}

// OnePlusOne is a (1+1) evolution strategy with the one-fifth success rule.
// Ties are accepted, so it drifts on plateaus.
type OnePlusOne struct {
	config OnePlusOneConfig
	rng    *rand.Rand
	parent []float64
	fp     float64
	step   float64
	best   incumbent
}

// NewOnePlusOne creates a new (1+1)-ES
func NewOnePlusOne(cfg OnePlusOneConfig) Optimizer {
	if cfg.SuccessFactor <= 1 {
		cfg.SuccessFactor = 1.5
	}
	es := &OnePlusOne{config: cfg}
	es.Reset()
	return es
}

func (es *OnePlusOne) Ask() []float64 {
	if math.IsInf(es.fp, 1) {
		return clone(es.parent)
	}
	x := make([]float64, len(es.parent))
	for i := range x {
		x[i] = es.parent[i] + es.step*es.rng.NormFloat64()
	}
	return es.config.Clamp(x)
}

func (es *OnePlusOne) Tell(x []float64, f float64) {
	es.best.offer(x, f)

	if math.IsInf(es.fp, 1) {
		es.parent = clone(x)
		es.fp = f
		return
	}
	if f <= es.fp {
		es.parent = clone(x)
		es.fp = f
		es.step *= es.config.SuccessFactor
	} else {
		es.step /= math.Pow(es.config.SuccessFactor, 0.25)
	}
	es.step = math.Max(es.step, es.config.MinStep)
}

func (es *OnePlusOne) Best() ([]float64, float64) {
	return es.best.get()
}

// Step returns the current mutation strength
func (es *OnePlusOne) Step() float64 {
	return es.step
}

func (es *OnePlusOne) Reset() {
	es.rng = rand.New(rand.NewSource(es.config.Seed))
	es.parent = clone(es.config.Initial)
	es.fp = math.Inf(1)
	es.step = es.config.InitialStep
	es.best = newIncumbent(es.config.Initial)
}
