package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brianbland/noisifier/pkg/analysis"
	"github.com/brianbland/noisifier/pkg/noiser"
	"github.com/brianbland/noisifier/pkg/optimizer"
	"github.com/brianbland/noisifier/pkg/simulator"
	"github.com/brianbland/noisifier/pkg/visualization"
)

func (a *app) newRunCmd() *cobra.Command {
	var trajectoryFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark an optimizer on a noisy problem",
		RunE: func(cmd *cobra.Command, _ []string) error {
			optType, err := optimizer.ParseType(a.exp.Optimizer)
			if err != nil {
				return err
			}
			n, err := a.noisifier()
			if err != nil {
				return err
			}
			noisy, reference, err := a.problems(n)
			if err != nil {
				return err
			}
			opt, err := optimizer.NewFactory().Create(optType, optimizer.ConfigFor(noisy, a.exp.Seed))
			if err != nil {
				return err
			}

			a.logger.Info("starting run",
				slog.String("problem", noisy.ID()),
				slog.String("optimizer", string(optType)),
				slog.Int("budget", a.exp.Budget),
				slog.String("noise", n.Parameters().String()),
			)
			tr, err := simulator.Run(cmd.Context(), noisy, opt, a.exp.Budget,
				simulator.WithReference(reference),
				simulator.WithMetadata(string(optType), a.exp.Seed, n.Parameters()),
				simulator.WithStepCallback(func(s simulator.Step) {
					a.logger.Debug("evaluation",
						slog.Int("evaluation", s.Evaluation),
						slog.Float64("observed", s.Observed),
						slog.Float64("true", s.True),
					)
				}),
			)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(a.exp.OutputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if trajectoryFile == "" {
				trajectoryFile = filepath.Join(a.exp.OutputDir, fmt.Sprintf("trajectory_%s_%s.json", tr.Problem, tr.RunID[:8]))
			}
			if err := simulator.SaveTrajectory(tr, trajectoryFile); err != nil {
				return err
			}
			a.logger.Info("trajectory saved", slog.String("file", trajectoryFile))

			target := a.exp.Target
			if best, ok := reference.BestValue(); ok {
				target += best
			}
			result, err := analysis.NewAnalyzer(target).Analyze(tr)
			if err != nil {
				return err
			}
			if err := analysis.PrintResults(cmd.OutOrStdout(), []analysis.Result{result}); err != nil {
				return err
			}

			if a.exp.EnableGraphs {
				generator := visualization.NewGenerator(a.logger)
				filename := filepath.Join(a.exp.OutputDir, fmt.Sprintf("chart_%s_%s.html", tr.Problem, tr.RunID[:8]))
				if a.exp.LogScale {
					return generator.GenerateTrajectoryChartWithLogScale(tr, filename)
				}
				return generator.GenerateTrajectoryChart(tr, filename)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&trajectoryFile, "trajectory", "", "Trajectory output file (default: trajectory_<problem>_<run>.json in --output-dir)")
	return cmd
}

func (a *app) newSweepCmd() *cobra.Command {
	pAdd := simulator.DefaultSweepConfig().PAdd
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the optimizer once per p_add value and compare the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			optType, err := optimizer.ParseType(a.exp.Optimizer)
			if err != nil {
				return err
			}
			cfg := simulator.SweepConfig{
				Problem:   a.exp.Problem,
				Dimension: a.exp.Dimension,
				Optimizer: optType,
				Budget:    a.exp.Budget,
				Seed:      a.exp.Seed,
				Base:      a.cfg.Noise,
				PAdd:      pAdd,
			}
			results, err := simulator.Sweep(cmd.Context(), a.registry, cfg, noiser.WithSampler(a.sampler(nil)), noiser.WithLogger(a.logger))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "P_ADD\tBEST TRUE\tTRUE AT BEST OBSERVED")
			for _, r := range results {
				fmt.Fprintf(tw, "%.2f\t%.6g\t%.6g\n", r.PAdd, r.BestTrue, r.TrueAtBest)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if a.exp.EnableGraphs {
				if err := os.MkdirAll(a.exp.OutputDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				filename := filepath.Join(a.exp.OutputDir, fmt.Sprintf("sweep_%s.html", results[0].Trajectory.Problem))
				return visualization.NewGenerator(a.logger).GenerateSweepChart(results, filename)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&pAdd.Min, "min", pAdd.Min, "Smallest p_add")
	cmd.Flags().Float64Var(&pAdd.Max, "max", pAdd.Max, "Largest p_add")
	cmd.Flags().Float64Var(&pAdd.Step, "step", pAdd.Step, "p_add increment")
	return cmd
}
