package visualization

import (
	"log/slog"

	"github.com/brianbland/noisifier/pkg/simulator"
)

// ChartData holds the series of a trajectory chart
type ChartData struct {
	Evaluations  []float64
	Observed     []float64
	True         []float64
	BestObserved []float64
	BestTrue     []float64
}

// NewChartData extracts the chart series from a trajectory. True and BestTrue
// stay empty when the trajectory has no values without noise.
func NewChartData(tr *simulator.Trajectory) ChartData {
	var data ChartData
	for _, s := range tr.Steps {
		data.Evaluations = append(data.Evaluations, float64(s.Evaluation))
		data.Observed = append(data.Observed, s.Observed)
		data.BestObserved = append(data.BestObserved, s.BestObserved)
		if tr.HasTrue {
			data.True = append(data.True, s.True)
			data.BestTrue = append(data.BestTrue, s.BestTrue)
		}
	}
	return data
}

// ChartGenerator defines the interface for generating charts
type ChartGenerator interface {
	GenerateTrajectoryChart(tr *simulator.Trajectory, filename string) error
	GenerateTrajectoryChartWithLogScale(tr *simulator.Trajectory, filename string) error
	GenerateSweepChart(results []simulator.SweepResult, filename string) error
	GenerateNoiseHistogram(values []float64, bins int, filename string) error
}

// Generator implements ChartGenerator interface
type Generator struct {
	options ChartOptions
	logger  *slog.Logger
}

// NewGenerator creates a new chart generator
func NewGenerator(logger *slog.Logger) ChartGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{options: DefaultChartOptions(), logger: logger}
}

// ChartOptions contains size options for charts
type ChartOptions struct {
	Width  int
	Height int
}

// DefaultChartOptions returns the size used for all charts
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 1200, Height: 800}
}
