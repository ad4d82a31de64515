// Package batch evaluates many points of a problem concurrently and audits
// that repeated evaluations of the same point agree bit for bit.
package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brianbland/noisifier/pkg/problem"
)

// Options configures an Evaluator
type Options struct {
	Workers     int
	Constraints bool // also evaluate constraints
}

// DefaultOptions returns the default evaluator options
func DefaultOptions() Options {
	return Options{Workers: 4}
}

// Result represents the outcome of evaluating one point
type Result struct {
	Index      int
	X          []float64
	Objectives []float64
	Constraint []float64
	Err        error
}

// Progress reports how far a batch has come
type Progress struct {
	Total     int
	Completed int
	StartTime time.Time
}

// ProgressCallback is called after each completed evaluation
type ProgressCallback func(progress Progress)

// Evaluator runs evaluations on a bounded pool of goroutines
type Evaluator struct {
	options  Options
	progress ProgressCallback
}

// NewEvaluator creates a new evaluator
func NewEvaluator(options Options, progress ProgressCallback) *Evaluator {
	if options.Workers < 1 {
		options.Workers = 1
	}
	return &Evaluator{options: options, progress: progress}
}

// EvaluateAll evaluates every point and returns the results in input order.
// Failures of single evaluations are kept in Result.Err; the returned error
// is only set when ctx ends before all points are done.
func (e *Evaluator) EvaluateAll(ctx context.Context, p problem.Problem, points [][]float64) ([]Result, error) {
	results := make([]Result, len(points))
	progress := Progress{Total: len(points), StartTime: time.Now()}
	var completed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.Workers)

	for i, x := range points {
		i, x := i, x
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.evaluate(p, i, x)

			if e.progress != nil {
				snapshot := progress
				snapshot.Completed = int(completed.Add(1))
				e.progress(snapshot)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch evaluation interrupted: %w", err)
	}
	return results, nil
}

func (e *Evaluator) evaluate(p problem.Problem, i int, x []float64) Result {
	r := Result{Index: i, X: append([]float64(nil), x...)}

	r.Objectives, r.Err = p.Evaluate(x)
	if r.Err != nil {
		return r
	}
	if e.options.Constraints && p.NumberOfConstraints() > 0 {
		r.Constraint, r.Err = p.Constraint(x)
	}
	return r
}

// Failed returns the results that carry an error
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
