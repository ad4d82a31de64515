package batch

import (
	"context"
	"fmt"
	"math"

	"github.com/brianbland/noisifier/pkg/problem"
)

// Mismatch records a repeated evaluation that differed from the first one
type Mismatch struct {
	Point  int       `json:"point"`
	Repeat int       `json:"repeat"`
	X      []float64 `json:"x"`
	First  []float64 `json:"first"`
	Other  []float64 `json:"other"`
}

// AuditReport summarizes a determinism audit
type AuditReport struct {
	Points      int        `json:"points"`
	Repeats     int        `json:"repeats"`
	Evaluations int        `json:"evaluations"`
	Mismatches  []Mismatch `json:"mismatches"`
}

// Deterministic reports whether every repeat matched
func (r *AuditReport) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// Audit evaluates each point repeats times, interleaving all evaluations on
// the worker pool, and reports every repeat whose values are not bit-identical
// to the first evaluation of that point. Objectives and, when enabled,
// constraints are compared.
func (e *Evaluator) Audit(ctx context.Context, p problem.Problem, points [][]float64, repeats int) (*AuditReport, error) {
	if repeats < 2 {
		return nil, fmt.Errorf("audit needs at least 2 repeats, got %d", repeats)
	}

	jobs := make([][]float64, 0, len(points)*repeats)
	for r := 0; r < repeats; r++ {
		jobs = append(jobs, points...)
	}

	results, err := e.EvaluateAll(ctx, p, jobs)
	if err != nil {
		return nil, err
	}
	if failed := Failed(results); len(failed) > 0 {
		return nil, fmt.Errorf("audit evaluation of point %d failed: %w", failed[0].Index%len(points), failed[0].Err)
	}

	report := &AuditReport{Points: len(points), Repeats: repeats, Evaluations: len(results)}
	for i := range points {
		first := results[i]
		for r := 1; r < repeats; r++ {
			other := results[r*len(points)+i]
			if !identical(first.Objectives, other.Objectives) || !identical(first.Constraint, other.Constraint) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Point:  i,
					Repeat: r,
					X:      first.X,
					First:  append(append([]float64(nil), first.Objectives...), first.Constraint...),
					Other:  append(append([]float64(nil), other.Objectives...), other.Constraint...),
				})
			}
		}
	}
	return report, nil
}

func identical(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}
