// Package noise decides whether and how a point's objective value is
// perturbed. All decisions are drawn from frozen random streams of the point
// itself, so a point always receives the same perturbation.
package noise

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/brianbland/noisifier/pkg/randomizer"
)

// Stream indices of the random quantities drawn for one evaluation. They are
// disjoint so the quantities are independent.
const (
	StreamJitter     = 1
	StreamGate       = 2
	StreamJitterGate = 3
	StreamAdd        = 4
	StreamSubtract   = 5
)

// OutlierScale multiplies the absolute heavy-tailed sample. With this factor
// an outlier exceeds k with probability close to 1/k.
const OutlierScale = math.Pi / 2

// objectiveShift separates the seeds of the objectives of a multi-objective
// evaluation.
const objectiveShift = 1.001

// Event is the outlier decision taken for one evaluation.
type Event int

const (
	EventNone Event = iota
	EventAdd
	EventSubtract
)

func (e Event) String() string {
	switch e {
	case EventAdd:
		return "add"
	case EventSubtract:
		return "subtract"
	default:
		return "none"
	}
}

// Sample is the outcome of one noise draw.
type Sample struct {
	Value  float64
	Event  Event
	Jitter float64
	// Jittered reports whether the jitter stage fired. Jitter itself may be
	// 0 when epsilon is 0.
	Jittered bool
}

// Observer is notified of every sample drawn by a Policy.
type Observer interface {
	ObserveNoise(Sample)
}

// Rands are the sampling functions a Policy draws from.
type Rands struct {
	Uniform     randomizer.Func
	Gaussian    randomizer.Func
	HeavyTailed randomizer.Func
}

// DefaultRands returns the package-level frozen samplers.
func DefaultRands() Rands {
	return Rands{
		Uniform:     randomizer.Rand,
		Gaussian:    randomizer.Randn,
		HeavyTailed: randomizer.Randc,
	}
}

// RandsFrom binds the sampling functions to s.
func RandsFrom(s *randomizer.Sampler) Rands {
	return Rands{
		Uniform:     s.Rand,
		Gaussian:    s.Randn,
		HeavyTailed: s.Randc,
	}
}

// Policy computes the additive noise for a point. A Policy is immutable after
// construction and safe for concurrent use as long as its Rands and Observer
// are.
type Policy struct {
	configured Params
	effective  Params
	rands      Rands
	observer   Observer
	logger     *slog.Logger
	warnings   []Warning
}

// Option configures a Policy.
type Option func(*Policy)

// WithRands replaces the default frozen samplers.
func WithRands(rands Rands) Option {
	return func(p *Policy) {
		p.rands = rands
	}
}

// WithObserver attaches an observer notified on every draw.
func WithObserver(observer Observer) Option {
	return func(p *Policy) {
		p.observer = observer
	}
}

// WithLogger sets the logger for configuration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// NewPolicy validates params and returns a policy drawing from them. Negative
// and non-finite parameters are rejected; other findings are logged and kept
// as warnings.
func NewPolicy(params Params, opts ...Option) (*Policy, error) {
	p := &Policy{
		configured: params,
		effective:  params.Effective(),
		rands:      DefaultRands(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rands.Uniform == nil || p.rands.Gaussian == nil || p.rands.HeavyTailed == nil {
		return nil, fmt.Errorf("noise policy needs uniform, gaussian and heavy-tailed samplers")
	}

	warnings, err := params.Validate()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		p.logger.Warn(w.Message, slog.String("kind", w.Kind.String()))
	}
	p.warnings = warnings
	return p, nil
}

// Params returns the parameters as configured, before any reinterpretation.
func (p *Policy) Params() Params {
	return p.configured
}

// EffectiveParams returns the parameters the draws are compared against.
func (p *Policy) EffectiveParams() Params {
	return p.effective
}

// Warnings returns the findings of construction.
func (p *Policy) Warnings() []Warning {
	out := make([]Warning, len(p.warnings))
	copy(out, p.warnings)
	return out
}

// Noise returns the additive perturbation for x.
func (p *Policy) Noise(x []float64) float64 {
	return p.Sample(x).Value
}

// ObjectiveNoise returns the perturbation for objective k of a
// multi-objective evaluation at x. Objective 0 gets the same noise as Noise(x).
func (p *Policy) ObjectiveNoise(x []float64, k int) float64 {
	shift := float64(objectiveShift * float64(k))
	return p.Noise([]float64{coordinate(x, 0) + shift, coordinate(x, 1)})
}

// ConstraintNoise returns the perturbation for constraint i with value c at x.
// The noise depends on both the position and the constraint value.
func (p *Policy) ConstraintNoise(x []float64, i int, c float64) float64 {
	return p.Noise([]float64{coordinate(x, i%2), c})
}

// Sample draws the perturbation for x and reports how it was composed.
func (p *Policy) Sample(x []float64) Sample {
	s := p.sample(x)
	if p.observer != nil {
		p.observer.ObserveNoise(s)
	}
	return s
}

func (p *Policy) sample(x []float64) Sample {
	params := p.effective

	var s Sample
	if params.PEpsilon > 0 && p.rands.Uniform(x, StreamJitterGate) < params.PEpsilon {
		s.Jitter = params.Epsilon * p.rands.Gaussian(x, StreamJitter)
		s.Jittered = true
	}
	mustBeFinite(s.Jitter, "jitter")
	s.Value = s.Jitter

	if params.PAdd <= 0 && params.PSubtract <= 0 {
		return s
	}

	r := p.rands.Uniform(x, StreamGate)
	if !(r >= 0 && r <= 1) {
		panic(fmt.Sprintf("noise gate %v outside [0, 1]", r))
	}

	if r < params.PAdd {
		s.Event = EventAdd
		s.Value = s.Jitter + float64(OutlierScale*math.Abs(p.rands.HeavyTailed(x, StreamAdd)))
		mustBeFinite(s.Value, "added outlier")
		return s
	}

	// the gate is mirrored rather than drawn again
	r = 1 - r
	if r < params.PSubtract {
		s.Event = EventSubtract
		s.Value = s.Jitter - float64(OutlierScale*math.Abs(p.rands.HeavyTailed(x, StreamSubtract)))
		mustBeFinite(s.Value, "subtracted outlier")
	}
	return s
}

func mustBeFinite(v float64, what string) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("%s noise is not finite: %v", what, v))
	}
}

func coordinate(x []float64, i int) float64 {
	if i < len(x) {
		return x[i]
	}
	return 0
}
