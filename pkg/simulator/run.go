package simulator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/optimizer"
	"github.com/brianbland/noisifier/pkg/problem"
)

// Step represents one evaluation of a run
type Step struct {
	Evaluation   int       `json:"evaluation"`
	X            []float64 `json:"x"`
	Objectives   []float64 `json:"objectives"`
	Observed     float64   `json:"observed"`
	True         float64   `json:"true"`
	BestObserved float64   `json:"bestObserved"`
	BestTrue     float64   `json:"bestTrue"`
}

// Trajectory is the record of one optimizer run on a noisy problem
type Trajectory struct {
	RunID       string       `json:"runId"`
	Problem     string       `json:"problem"`
	ProblemName string       `json:"problemName"`
	Dimension   int          `json:"dimension"`
	Optimizer   string       `json:"optimizer"`
	Seed        int64        `json:"seed"`
	Noise       noise.Params `json:"noise"`
	Budget      int          `json:"budget"`
	HasTrue     bool         `json:"hasTrue"`
	Steps       []Step       `json:"steps"`
	StartedAt   time.Time    `json:"startedAt"`
	FinishedAt  time.Time    `json:"finishedAt"`
}

// Points returns the evaluated points in order
func (t *Trajectory) Points() [][]float64 {
	points := make([][]float64, len(t.Steps))
	for i, s := range t.Steps {
		points[i] = s.X
	}
	return points
}

// Last returns the final step, or false for an empty trajectory
func (t *Trajectory) Last() (Step, bool) {
	if len(t.Steps) == 0 {
		return Step{}, false
	}
	return t.Steps[len(t.Steps)-1], true
}

// TrueAtBestObserved returns the value without noise at the point with the
// best observed value, which is the point noise can mislead an optimizer into
// reporting. It is NaN for an empty trajectory.
func (t *Trajectory) TrueAtBestObserved() float64 {
	best := math.Inf(1)
	truth := math.NaN()
	for _, s := range t.Steps {
		if s.Observed < best {
			best = s.Observed
			truth = s.True
		}
	}
	return truth
}

// Scalarizer reduces objective values to the single value an optimizer sees
type Scalarizer func(objectives []float64) float64

// Sum adds all objectives
func Sum(objectives []float64) float64 {
	total := 0.0
	for _, f := range objectives {
		total += f
	}
	return total
}

type runOptions struct {
	reference problem.Problem
	scalarize Scalarizer
	optimizer string
	seed      int64
	noise     noise.Params
	onStep    func(Step)
}

// RunOption configures Run
type RunOption func(*runOptions)

// WithReference evaluates every point on ref as well, to record the value
// without noise. ref should be a separate instance of the noisy problem's
// underlying problem.
func WithReference(ref problem.Problem) RunOption {
	return func(o *runOptions) {
		o.reference = ref
	}
}

// WithScalarizer sets how multi-objective values are combined; Sum by default
func WithScalarizer(s Scalarizer) RunOption {
	return func(o *runOptions) {
		o.scalarize = s
	}
}

// WithMetadata records the optimizer name, its seed and the noise parameters
// in the trajectory
func WithMetadata(optimizerName string, seed int64, params noise.Params) RunOption {
	return func(o *runOptions) {
		o.optimizer = optimizerName
		o.seed = seed
		o.noise = params
	}
}

// WithStepCallback is called after every evaluation
func WithStepCallback(fn func(Step)) RunOption {
	return func(o *runOptions) {
		o.onStep = fn
	}
}

// Run lets opt spend budget evaluations on p. On error the trajectory up to
// the failing evaluation is returned together with the error.
func Run(ctx context.Context, p problem.Problem, opt optimizer.Optimizer, budget int, opts ...RunOption) (*Trajectory, error) {
	if budget < 1 {
		return nil, fmt.Errorf("budget (%d) must be positive", budget)
	}
	o := runOptions{scalarize: Sum}
	for _, fn := range opts {
		fn(&o)
	}

	tr := &Trajectory{
		RunID:       uuid.NewString(),
		Problem:     p.ID(),
		ProblemName: p.Name(),
		Dimension:   p.Dimension(),
		Optimizer:   o.optimizer,
		Seed:        o.seed,
		Noise:       o.noise,
		Budget:      budget,
		HasTrue:     o.reference != nil,
		Steps:       make([]Step, 0, budget),
		StartedAt:   time.Now().UTC(),
	}

	bestObserved, bestTrue := math.Inf(1), math.Inf(1)
	for i := 1; i <= budget; i++ {
		if err := ctx.Err(); err != nil {
			tr.FinishedAt = time.Now().UTC()
			return tr, err
		}

		x := opt.Ask()
		objectives, err := p.Evaluate(x)
		if err != nil {
			tr.FinishedAt = time.Now().UTC()
			return tr, fmt.Errorf("evaluation %d failed: %w", i, err)
		}
		observed := o.scalarize(objectives)
		opt.Tell(x, observed)

		step := Step{
			Evaluation: i,
			X:          append([]float64(nil), x...),
			Objectives: objectives,
			Observed:   observed,
		}
		if o.reference != nil {
			truth, err := o.reference.Evaluate(x)
			if err != nil {
				tr.FinishedAt = time.Now().UTC()
				return tr, fmt.Errorf("reference evaluation %d failed: %w", i, err)
			}
			step.True = o.scalarize(truth)
		}

		bestObserved = math.Min(bestObserved, step.Observed)
		step.BestObserved = bestObserved
		if o.reference != nil {
			bestTrue = math.Min(bestTrue, step.True)
			step.BestTrue = bestTrue
		}

		tr.Steps = append(tr.Steps, step)
		if o.onStep != nil {
			o.onStep(step)
		}
	}

	tr.FinishedAt = time.Now().UTC()
	return tr, nil
}
