package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/brianbland/noisifier/pkg/batch"
	"github.com/brianbland/noisifier/pkg/noiser"
	"github.com/brianbland/noisifier/pkg/simulator"
)

func (a *app) newVerifyCmd() *cobra.Command {
	var points int
	cmd := &cobra.Command{
		Use:   "verify [trajectory.json]",
		Short: "Check that noisy evaluations are reproducible",
		Long: `Evaluate random points of the configured problem repeatedly and
concurrently and report any value that is not bit-identical.

Given a saved trajectory, also evaluate its points again under the noise
parameters stored with it and compare with the recorded values.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.exp.Unfrozen {
				a.logger.Warn("noise is unfrozen, repeated evaluations are expected to differ")
			}

			n, err := a.noisifier()
			if err != nil {
				return err
			}
			noisy, _, err := a.problems(n)
			if err != nil {
				return err
			}

			evaluator := batch.NewEvaluator(batch.Options{
				Workers:     a.exp.Workers,
				Constraints: noisy.NumberOfConstraints() > 0,
			}, nil)
			report, err := evaluator.Audit(cmd.Context(), noisy, randomPoints(noisy, points, a.exp.Seed), a.exp.Repeats)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "audit: %d points x %d repeats on %d workers, %d evaluations, %d mismatches\n",
				report.Points, report.Repeats, a.exp.Workers, report.Evaluations, len(report.Mismatches))
			for _, m := range report.Mismatches {
				a.logger.Error("evaluation not reproduced",
					slog.Int("point", m.Point), slog.Int("repeat", m.Repeat),
					slog.Any("first", m.First), slog.Any("other", m.Other))
			}
			if !report.Deterministic() {
				return fmt.Errorf("%d of %d repeated evaluations differ", len(report.Mismatches), report.Evaluations-report.Points)
			}

			if len(args) == 0 {
				return nil
			}
			return a.replay(cmd, args[0])
		},
	}
	cmd.Flags().IntVar(&points, "points", 100, "Random points to audit")
	return cmd
}

func (a *app) replay(cmd *cobra.Command, filename string) error {
	tr, err := simulator.LoadTrajectory(filename)
	if err != nil {
		return err
	}
	raw, err := a.registry.GetByName(tr.ProblemName, tr.Dimension)
	if err != nil {
		return err
	}
	n, err := a.noisifier(noiser.WithParams(tr.Noise))
	if err != nil {
		return err
	}

	report, err := simulator.Replay(n.Noisify(raw), tr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "replay of %s (%s): %d steps, %d mismatches\n",
		tr.RunID, tr.Problem, report.Steps, report.Mismatches)
	if !report.Reproduced() {
		return fmt.Errorf("evaluation %d recorded %.17g but replayed %.17g",
			report.FirstMismatch, report.Recorded, report.Replayed)
	}
	return nil
}
