package simulator

import (
	"context"
	"fmt"
	"math"

	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/noiser"
	"github.com/brianbland/noisifier/pkg/optimizer"
	"github.com/brianbland/noisifier/pkg/problem"
)

// ParameterRange defines the range for a parameter
type ParameterRange struct {
	Min  float64
	Max  float64
	Step float64
}

// Values returns Min, Min+Step, ... up to and including Max
func (r ParameterRange) Values() ([]float64, error) {
	if r.Step <= 0 {
		return nil, fmt.Errorf("step (%g) must be positive", r.Step)
	}
	if r.Max < r.Min {
		return nil, fmt.Errorf("max (%g) must be >= min (%g)", r.Max, r.Min)
	}
	n := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = r.Min + float64(i)*r.Step
	}
	return values, nil
}

// SweepConfig holds the runs of a p_add sweep
type SweepConfig struct {
	Problem   string
	Dimension int
	Optimizer optimizer.Type
	Budget    int
	Seed      int64
	Base      noise.Params
	PAdd      ParameterRange
}

// DefaultSweepConfig returns a sweep of p_add from 0 to 0.5
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Problem:   "sphere",
		Dimension: 2,
		Optimizer: optimizer.TypeOnePlusOne,
		Budget:    200,
		Seed:      1,
		Base:      noise.DefaultParams(0, 0),
		PAdd:      ParameterRange{Min: 0, Max: 0.5, Step: 0.1},
	}
}

// SweepResult holds the outcome of one sweep value
type SweepResult struct {
	PAdd       float64
	Trajectory *Trajectory
	BestTrue   float64
	// TrueAtBest is the true value of the point with the best observed value
	TrueAtBest float64
}

// Sweep runs the configured optimizer once per p_add value, with the same
// optimizer seed, so differences stem from the noise alone.
func Sweep(ctx context.Context, registry *problem.Registry, cfg SweepConfig, opts ...noiser.Option) ([]SweepResult, error) {
	values, err := cfg.PAdd.Values()
	if err != nil {
		return nil, fmt.Errorf("invalid p_add range: %w", err)
	}
	factory := optimizer.NewFactory()

	results := make([]SweepResult, 0, len(values))
	for _, pAdd := range values {
		params := cfg.Base
		params.PAdd = pAdd

		raw, err := registry.GetByName(cfg.Problem, cfg.Dimension)
		if err != nil {
			return nil, err
		}
		reference, err := registry.GetByName(cfg.Problem, cfg.Dimension)
		if err != nil {
			return nil, err
		}
		n, err := noiser.New(append([]noiser.Option{noiser.WithParams(params)}, opts...)...)
		if err != nil {
			return nil, fmt.Errorf("p_add=%g: %w", pAdd, err)
		}
		noisy := n.Noisify(raw)

		opt, err := factory.Create(cfg.Optimizer, optimizer.ConfigFor(noisy, cfg.Seed))
		if err != nil {
			return nil, err
		}

		tr, err := Run(ctx, noisy, opt, cfg.Budget,
			WithReference(reference),
			WithMetadata(string(cfg.Optimizer), cfg.Seed, params),
		)
		if err != nil {
			return nil, fmt.Errorf("p_add=%g: %w", pAdd, err)
		}

		last, _ := tr.Last()
		results = append(results, SweepResult{
			PAdd:       pAdd,
			Trajectory: tr,
			BestTrue:   last.BestTrue,
			TrueAtBest: tr.TrueAtBestObserved(),
		})
	}
	return results, nil
}
