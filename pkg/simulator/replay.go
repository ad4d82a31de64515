package simulator

import (
	"fmt"
	"math"

	"github.com/brianbland/noisifier/pkg/problem"
)

// ReplayReport compares a recorded trajectory with a fresh evaluation of its
// points
type ReplayReport struct {
	Steps      int
	Mismatches int
	// FirstMismatch is the evaluation number of the first differing step, or 0
	FirstMismatch int
	Recorded      float64
	Replayed      float64
}

// Reproduced reports whether every step was reproduced bit for bit
func (r ReplayReport) Reproduced() bool {
	return r.Mismatches == 0
}

// Replay evaluates the recorded points on p again. With frozen noise and the
// same noise parameters every objective value must be reproduced exactly.
func Replay(p problem.Problem, tr *Trajectory) (ReplayReport, error) {
	report := ReplayReport{Steps: len(tr.Steps)}
	for _, step := range tr.Steps {
		objectives, err := p.Evaluate(step.X)
		if err != nil {
			return report, fmt.Errorf("replay of evaluation %d failed: %w", step.Evaluation, err)
		}
		if sameBits(objectives, step.Objectives) {
			continue
		}
		report.Mismatches++
		if report.FirstMismatch == 0 {
			report.FirstMismatch = step.Evaluation
			report.Recorded = Sum(step.Objectives)
			report.Replayed = Sum(objectives)
		}
	}
	return report, nil
}

func sameBits(a, b []float64) bool {
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
