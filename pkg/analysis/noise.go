package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/brianbland/noisifier/pkg/noise"
)

// ErrNoSamples is returned when a summary is requested for an empty sample.
var ErrNoSamples = errors.New("no samples")

// NoiseSummary describes a set of noise draws.
type NoiseSummary struct {
	Count            int
	Mean             float64
	StdDev           float64
	Median           float64
	Q25              float64
	Q75              float64
	Min              float64
	Max              float64
	AddFraction      float64
	SubtractFraction float64
	JitterFraction   float64
}

// SummarizeNoise computes location, spread and event frequencies of samples.
func SummarizeNoise(samples []noise.Sample) (NoiseSummary, error) {
	if len(samples) == 0 {
		return NoiseSummary{}, ErrNoSamples
	}

	values := make(stats.Float64Data, len(samples))
	var added, subtracted, jittered int
	for i, s := range samples {
		values[i] = s.Value
		switch s.Event {
		case noise.EventAdd:
			added++
		case noise.EventSubtract:
			subtracted++
		}
		if s.Jittered {
			jittered++
		}
	}

	summary, err := Describe(values)
	if err != nil {
		return NoiseSummary{}, err
	}
	n := float64(len(samples))
	summary.AddFraction = float64(added) / n
	summary.SubtractFraction = float64(subtracted) / n
	summary.JitterFraction = float64(jittered) / n
	return summary, nil
}

// Describe computes the location and spread of values. Event fractions are
// left at zero.
func Describe(values []float64) (NoiseSummary, error) {
	if len(values) == 0 {
		return NoiseSummary{}, ErrNoSamples
	}
	data := stats.Float64Data(values)

	var (
		s   = NoiseSummary{Count: len(values)}
		err error
	)
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	quartiles, err := data.Quartiles()
	if err != nil {
		return s, err
	}
	s.Q25, s.Q75 = quartiles.Q1, quartiles.Q3
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	return s, nil
}

// Fit is the Kolmogorov-Smirnov distance of a sample to a reference
// distribution together with the asymptotic 5% critical value.
type Fit struct {
	Distance float64
	Critical float64
}

// Accepted reports whether the sample is consistent with the reference at the
// 5% level.
func (f Fit) Accepted() bool {
	return f.Distance <= f.Critical
}

type cdf interface {
	CDF(x float64) float64
}

// GaussianFit compares values with the standard normal distribution.
func GaussianFit(values []float64) (Fit, error) {
	return ksFit(values, distuv.UnitNormal)
}

// CauchyFit compares values with the standard Cauchy distribution, a
// Student's t with one degree of freedom.
func CauchyFit(values []float64) (Fit, error) {
	return ksFit(values, distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 1})
}

func ksFit(values []float64, ref cdf) (Fit, error) {
	if len(values) == 0 {
		return Fit{}, ErrNoSamples
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var d float64
	for i, v := range sorted {
		f := ref.CDF(v)
		d = math.Max(d, math.Max(float64(i+1)/n-f, f-float64(i)/n))
	}
	return Fit{Distance: d, Critical: 1.358 / math.Sqrt(n)}, nil
}

// TailRatio returns k times the observed fraction of values with
// OutlierScale*|v| > k, and the same quantity for an exact standard Cauchy
// distribution. Both approach 1 as k grows.
func TailRatio(values []float64, k float64) (observed, expected float64, err error) {
	if len(values) == 0 {
		return 0, 0, ErrNoSamples
	}
	if k <= 0 {
		return 0, 0, fmt.Errorf("tail threshold must be positive, got %g", k)
	}
	var exceed int
	for _, v := range values {
		if noise.OutlierScale*math.Abs(v) > k {
			exceed++
		}
	}
	observed = k * float64(exceed) / float64(len(values))

	cauchy := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 1}
	expected = k * 2 * cauchy.Survival(k/noise.OutlierScale)
	return observed, expected, nil
}

// PrintNoiseSummary writes s as a two-column table.
func PrintNoiseSummary(w io.Writer, s NoiseSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "samples\t%d\n", s.Count)
	fmt.Fprintf(tw, "mean\t%.6g\n", s.Mean)
	fmt.Fprintf(tw, "std dev\t%.6g\n", s.StdDev)
	fmt.Fprintf(tw, "median\t%.6g\n", s.Median)
	fmt.Fprintf(tw, "quartiles\t%.6g .. %.6g\n", s.Q25, s.Q75)
	fmt.Fprintf(tw, "range\t%.6g .. %.6g\n", s.Min, s.Max)
	fmt.Fprintf(tw, "added outliers\t%.2f%%\n", 100*s.AddFraction)
	fmt.Fprintf(tw, "subtracted outliers\t%.2f%%\n", 100*s.SubtractFraction)
	fmt.Fprintf(tw, "jittered\t%.2f%%\n", 100*s.JitterFraction)
	return tw.Flush()
}
