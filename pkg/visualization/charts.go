package visualization

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/brianbland/noisifier/pkg/simulator"
)

// logFloor replaces values that a log axis cannot show
const logFloor = 1e-12

// GenerateTrajectoryChart creates an interactive chart of a run
func (g *Generator) GenerateTrajectoryChart(tr *simulator.Trajectory, filename string) error {
	return g.generateTrajectoryChart(tr, filename, false)
}

// GenerateTrajectoryChartWithLogScale creates an interactive chart of a run
// with logarithmic Y-axis
func (g *Generator) GenerateTrajectoryChartWithLogScale(tr *simulator.Trajectory, filename string) error {
	return g.generateTrajectoryChart(tr, filename, true)
}

func (g *Generator) generateTrajectoryChart(tr *simulator.Trajectory, filename string, useLogScale bool) error {
	if len(tr.Steps) == 0 {
		return fmt.Errorf("trajectory %s has no steps", tr.RunID)
	}
	data := NewChartData(tr)

	line := charts.NewLine()

	yAxisOpts := opts.YAxis{
		Name: "f",
		Type: "value",
	}
	subtitle := fmt.Sprintf("%s, p_add=%g p_subtract=%g p_epsilon=%g",
		tr.Optimizer, tr.Noise.PAdd, tr.Noise.PSubtract, tr.Noise.PEpsilon)
	if useLogScale {
		yAxisOpts = opts.YAxis{
			Name: "f - Log Scale",
			Type: "log",
			Min:  logFloor,
		}
		subtitle += " - Logarithmic Scale"
	}

	line.SetGlobalOptions(
		g.initializationOpts(),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Noisy Benchmark: %s", tr.Problem),
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Evaluation",
			Type: "value",
		}),
		charts.WithYAxisOpts(yAxisOpts),
		legendOpts(),
		toolboxOpts(),
	)

	line.AddSeries("Observed f", lineData(data.Evaluations, data.Observed, useLogScale),
		charts.WithLineStyleOpts(opts.LineStyle{
			Width: 1,
		}),
	).
		AddSeries("Best Observed f", lineData(data.Evaluations, data.BestObserved, useLogScale),
			charts.WithLineStyleOpts(opts.LineStyle{
				Width: 2,
				Type:  "dashed",
			}),
		)

	if tr.HasTrue {
		line.AddSeries("True f", lineData(data.Evaluations, data.True, useLogScale),
			charts.WithLineStyleOpts(opts.LineStyle{
				Width: 1,
			}),
		).
			AddSeries("Best True f", lineData(data.Evaluations, data.BestTrue, useLogScale),
				charts.WithLineStyleOpts(opts.LineStyle{
					Width: 3,
				}),
			)
	}

	if err := renderHTML(line, htmlName(filename)); err != nil {
		return err
	}

	scaleType := "linear"
	if useLogScale {
		scaleType = "logarithmic"
	}
	g.logger.Info("trajectory chart saved",
		slog.String("file", htmlName(filename)), slog.String("scale", scaleType))
	return nil
}

// GenerateSweepChart overlays the best value found per evaluation for every
// p_add of a sweep
func (g *Generator) GenerateSweepChart(results []simulator.SweepResult, filename string) error {
	if len(results) == 0 {
		return fmt.Errorf("sweep has no results")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		g.initializationOpts(),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("p_add Sweep: %s", results[0].Trajectory.Problem),
			Subtitle: "Best value without noise per evaluation",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Evaluation",
			Type: "value",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Best f",
			Type: "log",
			Min:  logFloor,
		}),
		legendOpts(),
		toolboxOpts(),
	)

	for _, r := range results {
		data := NewChartData(r.Trajectory)
		best := data.BestTrue
		if !r.Trajectory.HasTrue {
			best = data.BestObserved
		}
		line.AddSeries(fmt.Sprintf("p_add=%.2f", r.PAdd), lineData(data.Evaluations, best, true))
	}

	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{
			Smooth: opts.Bool(true),
		}),
	)

	if err := renderHTML(line, htmlName(filename)); err != nil {
		return err
	}
	g.logger.Info("sweep chart saved", slog.String("file", htmlName(filename)))
	return nil
}

func (g *Generator) initializationOpts() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Width:  fmt.Sprintf("%dpx", g.options.Width),
		Height: fmt.Sprintf("%dpx", g.options.Height),
	})
}

func legendOpts() charts.GlobalOpts {
	return charts.WithLegendOpts(opts.Legend{
		Show: opts.Bool(true),
		Top:  "10%",
	})
}

func toolboxOpts() charts.GlobalOpts {
	return charts.WithToolboxOpts(opts.Toolbox{
		Show: opts.Bool(true),
		Feature: &opts.ToolBoxFeature{
			SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
				Show:  opts.Bool(true),
				Type:  "png",
				Title: "Save as Image",
			},
			DataZoom: &opts.ToolBoxFeatureDataZoom{
				Show:  opts.Bool(true),
				Title: map[string]string{"zoom": "Zoom", "back": "Back"},
			},
		},
	})
}

// lineData pairs x and y values; on a log axis non-positive values, which
// subtracted outliers produce, are raised to logFloor
func lineData(xs, ys []float64, useLogScale bool) []opts.LineData {
	data := make([]opts.LineData, len(ys))
	for i, y := range ys {
		if useLogScale && y <= 0 {
			y = logFloor
		}
		data[i] = opts.LineData{Value: []interface{}{xs[i], y}}
	}
	return data
}

func htmlName(filename string) string {
	if !strings.HasSuffix(filename, ".html") {
		return strings.TrimSuffix(filename, ".png") + ".html"
	}
	return filename
}

func renderHTML(line *charts.Line, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := line.Render(file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
