package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brianbland/noisifier/pkg/config"
	"github.com/brianbland/noisifier/pkg/noiser"
	"github.com/brianbland/noisifier/pkg/problem"
	"github.com/brianbland/noisifier/pkg/randomizer"
)

// app holds what every command needs once flags are resolved
type app struct {
	parser   *config.Parser
	cfg      *config.Config
	exp      *config.ExperimentConfig
	registry *problem.Registry
	logger   *slog.Logger

	logLevel string
	logJSON  bool
}

func newRootCmd() *cobra.Command {
	a := &app{
		parser:   config.NewParser(nil),
		registry: problem.NewRegistry(),
	}

	root := &cobra.Command{
		Use:   "noiser",
		Short: "Frozen noise for benchmarking optimizers",
		Long: `noiser perturbs benchmark objective values with reproducible noise: the
noise at a point depends on the point only, so repeated evaluations agree
across runs, processes and machines.

Noise parameters are layered: defaults, the parameter file, NOISER_*
environment variables (optionally from a .env file), then flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().AddFlagSet(a.parser.FlagSet())
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "Log as JSON instead of text")

	root.AddCommand(
		a.newSampleCmd(),
		a.newNoiseCmd(),
		a.newRunCmd(),
		a.newSweepCmd(),
		a.newVerifyCmd(),
		a.newParamsCmd(),
		a.newServeCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.logLevel, a.logJSON)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)
	a.parser.SetLogger(logger)

	a.cfg, a.exp, err = a.parser.Resolve()
	return err
}

func newLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// sampler returns a frozen sampler, or an unfrozen one seeded with the
// experiment seed when --unfrozen is set
func (a *app) sampler(recorder randomizer.Recorder) *randomizer.Sampler {
	opts := []randomizer.Option{randomizer.WithLogger(a.logger)}
	if recorder != nil {
		opts = append(opts, randomizer.WithRecorder(recorder))
	}
	if a.exp.Unfrozen {
		opts = append(opts, randomizer.WithUnfrozen(rand.New(rand.NewSource(a.exp.Seed))))
	}
	return randomizer.NewSampler(opts...)
}

func (a *app) noisifier(opts ...noiser.Option) (*noiser.Noisifier, error) {
	base := []noiser.Option{
		noiser.WithParams(a.cfg.Noise),
		noiser.WithSampler(a.sampler(nil)),
		noiser.WithLogger(a.logger),
	}
	return noiser.New(append(base, opts...)...)
}

// problems returns the configured problem twice: wrapped in noise, and bare
// for reference values
func (a *app) problems(n *noiser.Noisifier) (noisy *noiser.Noisifier, reference problem.Problem, err error) {
	raw, err := a.registry.GetByName(a.exp.Problem, a.exp.Dimension)
	if err != nil {
		return nil, nil, err
	}
	reference, err = a.registry.GetByName(a.exp.Problem, a.exp.Dimension)
	if err != nil {
		return nil, nil, err
	}
	return n.Noisify(raw), reference, nil
}

// randomPoints draws count points uniformly within the bounds of p
func randomPoints(p problem.Problem, count int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	lower, upper := p.LowerBounds(), p.UpperBounds()
	points := make([][]float64, count)
	for i := range points {
		x := make([]float64, p.Dimension())
		for j := range x {
			x[j] = lower[j] + rng.Float64()*(upper[j]-lower[j])
		}
		points[i] = x
	}
	return points
}
