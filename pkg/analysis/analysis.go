package analysis

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/montanaflynn/stats"

	"github.com/brianbland/noisifier/pkg/simulator"
)

// Result contains the analysis of one optimizer run
type Result struct {
	RunID         string
	Problem       string
	Optimizer     string
	Evaluations   int
	FinalObserved float64
	BestObserved  float64
	HasTrue       bool
	FinalTrue     float64
	BestTrue      float64
	// TrueAtBestObserved is the value without noise at the point the
	// optimizer believes is best. Outliers in the observed value make it
	// differ from BestTrue.
	TrueAtBestObserved float64
	// HitTarget is the first evaluation whose best value reached the
	// target, or 0 if it never did.
	HitTarget      int
	ObservedSpread float64
}

// Analyzer handles analysis operations
type Analyzer struct {
	target float64
}

// NewAnalyzer creates an analyzer that counts evaluations until the best
// value (true when recorded, observed otherwise) drops to target
func NewAnalyzer(target float64) *Analyzer {
	return &Analyzer{target: target}
}

// Analyze summarizes a trajectory
func (a *Analyzer) Analyze(tr *simulator.Trajectory) (Result, error) {
	last, ok := tr.Last()
	if !ok {
		return Result{}, fmt.Errorf("trajectory %s has no steps", tr.RunID)
	}

	observed := make([]float64, len(tr.Steps))
	for i, s := range tr.Steps {
		observed[i] = s.Observed
	}
	spread, err := stats.StandardDeviationSample(stats.Float64Data(observed))
	if err != nil {
		spread = 0
	}

	result := Result{
		RunID:          tr.RunID,
		Problem:        tr.Problem,
		Optimizer:      tr.Optimizer,
		Evaluations:    len(tr.Steps),
		FinalObserved:  last.Observed,
		BestObserved:   last.BestObserved,
		HasTrue:        tr.HasTrue,
		ObservedSpread: spread,
	}
	if tr.HasTrue {
		result.FinalTrue = last.True
		result.BestTrue = last.BestTrue
		result.TrueAtBestObserved = tr.TrueAtBestObserved()
	}

	for _, s := range tr.Steps {
		best := s.BestObserved
		if tr.HasTrue {
			best = s.BestTrue
		}
		if best <= a.target {
			result.HitTarget = s.Evaluation
			break
		}
	}
	return result, nil
}

// AnalyzeAll summarizes each trajectory in order
func (a *Analyzer) AnalyzeAll(trs []*simulator.Trajectory) ([]Result, error) {
	results := make([]Result, 0, len(trs))
	for _, tr := range trs {
		r, err := a.Analyze(tr)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// PrintResults prints a table of run results to w
func PrintResults(w io.Writer, results []Result) error {
	fmt.Fprintf(w, "\n%s\nRUN SUMMARY\n%s\n", strings.Repeat("=", 80), strings.Repeat("=", 80))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Problem\tOptimizer\tEvals\tBest Observed\tBest True\tTrue@Best Observed\tTarget Hit")
	for _, r := range results {
		bestTrue, trueAtBest := "-", "-"
		if r.HasTrue {
			bestTrue = fmt.Sprintf("%.4g", r.BestTrue)
			trueAtBest = fmt.Sprintf("%.4g", r.TrueAtBestObserved)
		}
		hit := "never"
		if r.HitTarget > 0 {
			hit = fmt.Sprintf("%d", r.HitTarget)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.4g\t%s\t%s\t%s\n",
			r.Problem, r.Optimizer, r.Evaluations, r.BestObserved, bestTrue, trueAtBest, hit)
	}
	return tw.Flush()
}
