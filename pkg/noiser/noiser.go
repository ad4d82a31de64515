// Package noiser wraps a problem with frozen noise. A Noisifier behaves like
// the problem it wraps except that objective and constraint values carry a
// perturbation that depends deterministically on the evaluated point.
package noiser

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/problem"
	"github.com/brianbland/noisifier/pkg/randomizer"
)

// ErrNotWrapped is returned when evaluating a Noisifier that wraps no problem.
var ErrNotWrapped = errors.New("noisifier does not wrap a problem")

// ParamSource supplies stored noise parameters.
type ParamSource interface {
	LoadParams() (map[string]float64, error)
}

// Noisifier is a problem.Problem whose values are perturbed by a noise
// policy. Every method it does not define is served by the wrapped problem.
type Noisifier struct {
	problem.Problem

	params   noise.Params
	policy   *noise.Policy
	sampler  *randomizer.Sampler
	observer noise.Observer
	logger   *slog.Logger
}

type options struct {
	params   noise.Params
	sampler  *randomizer.Sampler
	observer noise.Observer
	logger   *slog.Logger
}

// Option configures a Noisifier.
type Option func(*options)

// WithParams sets the noise parameters. Without it noise.DefaultParams(0, 0)
// applies, which adds outliers with probability 0.2.
func WithParams(params noise.Params) Option {
	return func(o *options) {
		o.params = params
	}
}

// WithSampler draws all random numbers from s instead of the package default.
func WithSampler(s *randomizer.Sampler) Option {
	return func(o *options) {
		o.sampler = s
	}
}

// WithObserver reports every noise sample to observer.
func WithObserver(observer noise.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithLogger sets the logger for configuration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New validates the configuration and returns a Noisifier that is not yet
// bound to a problem. Negative parameters are rejected.
func New(opts ...Option) (*Noisifier, error) {
	o := options{
		params: noise.DefaultParams(0, 0),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	n := &Noisifier{
		sampler:  o.sampler,
		observer: o.observer,
		logger:   o.logger,
	}
	if err := n.configure(o.params); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Noisifier) configure(params noise.Params) error {
	opts := []noise.Option{noise.WithLogger(n.logger)}
	if n.sampler != nil {
		opts = append(opts, noise.WithRands(noise.RandsFrom(n.sampler)))
	}
	if n.observer != nil {
		opts = append(opts, noise.WithObserver(n.observer))
	}

	policy, err := noise.NewPolicy(params, opts...)
	if err != nil {
		return fmt.Errorf("invalid noise configuration: %w", err)
	}
	n.params = params
	n.policy = policy
	return nil
}

// Noisify returns a Noisifier with this configuration wrapping p. The
// receiver is left unchanged, so one configuration can wrap many problems.
func (n *Noisifier) Noisify(p problem.Problem) *Noisifier {
	wrapped := *n
	wrapped.Problem = p
	return &wrapped
}

// Unwrap returns the wrapped problem.
func (n *Noisifier) Unwrap() problem.Problem {
	return n.Problem
}

// Evaluate returns the wrapped problem's objective values plus noise. A single
// objective gets Noise(x); objective k of several gets noise seeded from
// x[0] + 1.001k and x[1]. Errors of the wrapped problem are returned as is.
func (n *Noisifier) Evaluate(x []float64) ([]float64, error) {
	if n.Problem == nil {
		return nil, ErrNotWrapped
	}
	f, err := n.Problem.Evaluate(x)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(f))
	if len(f) == 1 {
		out[0] = f[0] + n.policy.Noise(x)
		return out, nil
	}
	for k, v := range f {
		out[k] = v + n.policy.ObjectiveNoise(x, k)
	}
	return out, nil
}

// Constraint returns the wrapped problem's constraint values, each perturbed
// with noise seeded from x[i mod 2] and the value itself.
func (n *Noisifier) Constraint(x []float64) ([]float64, error) {
	if n.Problem == nil {
		return nil, ErrNotWrapped
	}
	g, err := n.Problem.Constraint(x)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(g))
	for i, c := range g {
		out[i] = c + n.policy.ConstraintNoise(x, i, c)
	}
	return out, nil
}

// Noise returns the perturbation added to a single objective at x.
func (n *Noisifier) Noise(x []float64) float64 {
	return n.policy.Noise(x)
}

// Parameters returns the configured noise parameters.
func (n *Noisifier) Parameters() noise.Params {
	return n.params
}

// Policy returns the noise policy in use.
func (n *Noisifier) Policy() *noise.Policy {
	return n.policy
}

// Warnings returns the findings of the last configuration.
func (n *Noisifier) Warnings() []noise.Warning {
	return n.policy.Warnings()
}

// SetParams merges the parameters found in source into the current ones,
// applies overrides on top, and reconfigures. source may be nil. On error the
// previous configuration stays in effect. SetParams must not run concurrently
// with evaluations.
func (n *Noisifier) SetParams(source ParamSource, overrides map[string]float64) error {
	params := n.params
	if source != nil {
		stored, err := source.LoadParams()
		if err != nil {
			return fmt.Errorf("failed to load noise parameters: %w", err)
		}
		if err := params.Merge(stored); err != nil {
			return fmt.Errorf("stored noise parameters: %w", err)
		}
	}
	if err := params.Merge(overrides); err != nil {
		return err
	}
	return n.configure(params)
}
