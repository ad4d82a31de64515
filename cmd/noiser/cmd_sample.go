package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brianbland/noisifier/pkg/analysis"
	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/randomizer"
	"github.com/brianbland/noisifier/pkg/server"
	"github.com/brianbland/noisifier/pkg/visualization"
)

func (a *app) newSampleCmd() *cobra.Command {
	var (
		stream int
		count  int
	)
	cmd := &cobra.Command{
		Use:   "sample [x0,x1,...]",
		Short: "Print the seed and the frozen random numbers for a point",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			x, err := server.ParsePoint(raw)
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("count (%d) must be positive", count)
			}

			seed, diag := randomizer.DeriveSeed(x, stream)
			if diag.NonFiniteSeed {
				a.logger.Warn("seed is not finite, using 1 instead")
			}
			uniform, _ := randomizer.Uniform(count, seed)
			gaussian, _ := randomizer.Gaussian(count, seed)
			cauchy, _ := randomizer.Cauchy(count, seed)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "x\t%v\n", x)
			fmt.Fprintf(tw, "stream\t%d\n", stream)
			fmt.Fprintf(tw, "seed\t%v\n", seed)
			fmt.Fprintf(tw, "rand\t%s\n", formatValues(uniform))
			fmt.Fprintf(tw, "randn\t%s\n", formatValues(gaussian))
			fmt.Fprintf(tw, "randc\t%s\n", formatValues(cauchy))
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&stream, "stream", 0, "Stream index; different streams give independent numbers")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Numbers to draw per distribution")
	return cmd
}

func (a *app) newNoiseCmd() *cobra.Command {
	var samples int
	cmd := &cobra.Command{
		Use:   "noise [x0,x1,... ...]",
		Short: "Print the noise at points, or summarize it over random points",
		Long: `Print the noise added at each given point under the configured parameters.

With --samples the noise is drawn at random points of the configured
problem's search space and summarized; --graph also writes a histogram.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.noisifier()
			if err != nil {
				return err
			}
			policy := n.Policy()
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "X\tNOISE\tEVENT\tJITTERED")
				for _, arg := range args {
					x, err := server.ParsePoint(arg)
					if err != nil {
						return err
					}
					s := policy.Sample(x)
					fmt.Fprintf(tw, "%v\t%v\t%s\t%t\n", x, s.Value, s.Event, s.Jittered)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			if samples <= 0 {
				if len(args) == 0 {
					return fmt.Errorf("give points or --samples")
				}
				return nil
			}

			noisy, _, err := a.problems(n)
			if err != nil {
				return err
			}
			drawn := make([]noise.Sample, samples)
			values := make([]float64, samples)
			for i, x := range randomPoints(noisy, samples, a.exp.Seed) {
				drawn[i] = policy.Sample(x)
				values[i] = drawn[i].Value
			}
			summary, err := analysis.SummarizeNoise(drawn)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "noise %s over %d points of %s\n", policy.EffectiveParams(), samples, noisy.ID())
			if err := analysis.PrintNoiseSummary(out, summary); err != nil {
				return err
			}

			if a.exp.EnableGraphs {
				if err := os.MkdirAll(a.exp.OutputDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				filename := filepath.Join(a.exp.OutputDir, "noise_histogram.png")
				if err := visualization.NewGenerator(a.logger).GenerateNoiseHistogram(values, 40, filename); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&samples, "samples", 0, "Summarize the noise over this many random points")
	return cmd
}

func formatValues(values []float64) string {
	if len(values) == 1 {
		return fmt.Sprint(values[0])
	}
	return fmt.Sprint(values)
}
