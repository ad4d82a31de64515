package visualization

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin is one bar of a histogram
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Histogram counts values in bins of equal width between the 1st and 99th
// percentile. Values outside that range are counted in the outer bins, so a
// few heavy-tailed outliers do not squeeze all other values into one bar.
func Histogram(values []float64, bins int) ([]Bin, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no values to bin")
	}
	if bins < 1 {
		return nil, fmt.Errorf("bins (%d) must be positive", bins)
	}

	lower, err := stats.PercentileNearestRank(values, 1)
	if err != nil {
		return nil, err
	}
	upper, err := stats.PercentileNearestRank(values, 99)
	if err != nil {
		return nil, err
	}
	if upper <= lower {
		upper = math.Nextafter(lower, math.Inf(1))
	}

	clipped := make([]float64, len(values))
	for i, v := range values {
		clipped[i] = math.Min(math.Max(v, lower), upper)
	}
	sort.Float64s(clipped)

	dividers := floats.Span(make([]float64, bins+1), lower, upper)
	// the last divider is exclusive
	dividers[bins] = math.Nextafter(upper, math.Inf(1))
	counts := stat.Histogram(nil, dividers, clipped, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	return out, nil
}

// GenerateNoiseHistogram renders a bar chart of values as PNG
func (g *Generator) GenerateNoiseHistogram(values []float64, bins int, filename string) error {
	histogram, err := Histogram(values, bins)
	if err != nil {
		return err
	}

	maxCount := 1
	bars := make([]chart.Value, len(histogram))
	for i, b := range histogram {
		bars[i] = chart.Value{
			Value: float64(b.Count),
			Label: fmt.Sprintf("%.2g", (b.Lower+b.Upper)/2),
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	barWidth := g.options.Width / (2 * len(bars))
	graph := chart.BarChart{
		Title:  fmt.Sprintf("Noise Distribution (%d samples)", len(values)),
		Width:  g.options.Width,
		Height: g.options.Height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   40,
				Right:  40,
				Bottom: 40,
			},
		},
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	g.logger.Info("noise histogram saved", slog.String("file", filename), slog.Int("bins", bins))
	return nil
}
