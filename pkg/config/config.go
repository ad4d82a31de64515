package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/optimizer"
	"github.com/brianbland/noisifier/pkg/problem"
)

// Sources of a noise parameter value.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Environment variables overriding the stored noise parameters.
var envKeys = map[string]string{
	noise.KeyPAdd:      "NOISER_P_ADD",
	noise.KeyPSubtract: "NOISER_P_SUBTRACT",
	noise.KeyPEpsilon:  "NOISER_P_EPSILON",
	noise.KeyEpsilon:   "NOISER_EPSILON",
}

var flagKeys = map[string]string{
	noise.KeyPAdd:      "p-add",
	noise.KeyPSubtract: "p-subtract",
	noise.KeyPEpsilon:  "p-epsilon",
	noise.KeyEpsilon:   "epsilon",
}

// Config holds the noise configuration and where each value came from
type Config struct {
	Noise      noise.Params
	ParamsFile string
	Sources    map[string]string // parameter key -> Source*
	Warnings   []noise.Warning
}

// ExperimentConfig holds runtime configuration for benchmark runs
type ExperimentConfig struct {
	Problem      string
	Dimension    int
	Optimizer    string
	Budget       int
	Seed         int64
	Workers      int
	Repeats      int
	Target       float64
	Unfrozen     bool
	EnableGraphs bool
	LogScale     bool
	OutputDir    string
	EnvFile      string
}

// Default returns a configuration with the default noise parameters
func Default() Config {
	return Config{
		Noise:      noise.DefaultParams(0, 0),
		ParamsFile: DefaultParamsFile,
		Sources: map[string]string{
			noise.KeyPAdd:      SourceDefault,
			noise.KeyPSubtract: SourceDefault,
			noise.KeyPEpsilon:  SourceDefault,
			noise.KeyEpsilon:   SourceDefault,
		},
	}
}

// DefaultExperiment returns the default experiment settings
func DefaultExperiment() ExperimentConfig {
	return ExperimentConfig{
		Problem:   "sphere",
		Dimension: 2,
		Optimizer: string(optimizer.TypeOnePlusOne),
		Budget:    200,
		Seed:      1,
		Workers:   4,
		Repeats:   3,
		Target:    1e-8,
		OutputDir: ".",
		EnvFile:   ".env",
	}
}

// Parser handles command-line flag parsing and layering of the noise
// parameters: defaults, parameter file, environment, then flags.
type Parser struct {
	config    *Config
	expConfig *ExperimentConfig
	flagSet   *pflag.FlagSet
	logger    *slog.Logger

	// flag targets, applied only when the flag was set
	flagNoise noise.Params
}

// NewParser creates a new configuration parser with all flags registered
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	config := Default()
	expConfig := DefaultExperiment()

	p := &Parser{
		config:    &config,
		expConfig: &expConfig,
		flagSet:   pflag.NewFlagSet("noiser", pflag.ContinueOnError),
		logger:    logger,
		flagNoise: config.Noise,
	}
	p.RegisterFlags()
	return p
}

// SetLogger replaces the logger used while resolving, e.g. once command
// line logging flags are known.
func (p *Parser) SetLogger(logger *slog.Logger) {
	p.logger = logger
}

// FlagSet returns the flags so commands can share them.
func (p *Parser) FlagSet() *pflag.FlagSet {
	return p.flagSet
}

// RegisterFlags registers all command-line flags
func (p *Parser) RegisterFlags() {
	// Noise configuration flags
	p.flagSet.Float64Var(&p.flagNoise.PAdd, flagKeys[noise.KeyPAdd], p.flagNoise.PAdd, "Probability of adding a heavy-tailed outlier (default 0.2 iff no other noise is configured)")
	p.flagSet.Float64Var(&p.flagNoise.PSubtract, flagKeys[noise.KeyPSubtract], p.flagNoise.PSubtract, "Probability of subtracting a heavy-tailed outlier")
	p.flagSet.Float64Var(&p.flagNoise.PEpsilon, flagKeys[noise.KeyPEpsilon], p.flagNoise.PEpsilon, "Probability of adding Gaussian jitter")
	p.flagSet.Float64Var(&p.flagNoise.Epsilon, flagKeys[noise.KeyEpsilon], p.flagNoise.Epsilon, "Standard deviation of the Gaussian jitter")
	p.flagSet.StringVar(&p.config.ParamsFile, "params-file", p.config.ParamsFile, "Noise parameter file (.json, .yaml or .yml)")

	// Experiment configuration flags
	p.flagSet.StringVar(&p.expConfig.Problem, "problem", p.expConfig.Problem, "Benchmark problem: "+strings.Join(problem.NewRegistry().Names(), ", "))
	p.flagSet.IntVar(&p.expConfig.Dimension, "dimension", p.expConfig.Dimension, "Search space dimension")
	p.flagSet.StringVar(&p.expConfig.Optimizer, "optimizer", p.expConfig.Optimizer, "Optimizer: "+strings.Join(optimizer.AvailableTypeNames(), ", "))
	p.flagSet.IntVar(&p.expConfig.Budget, "budget", p.expConfig.Budget, "Number of evaluations per run")
	p.flagSet.Int64Var(&p.expConfig.Seed, "seed", p.expConfig.Seed, "Seed of the optimizer's own randomness")
	p.flagSet.IntVar(&p.expConfig.Workers, "workers", p.expConfig.Workers, "Number of concurrent evaluations")
	p.flagSet.IntVar(&p.expConfig.Repeats, "repeats", p.expConfig.Repeats, "Evaluations per point in determinism audits")
	p.flagSet.Float64Var(&p.expConfig.Target, "target", p.expConfig.Target, "Precision to reach above the optimal value")
	p.flagSet.BoolVar(&p.expConfig.Unfrozen, "unfrozen", p.expConfig.Unfrozen, "Draw seeds at random instead of from the evaluated point")
	p.flagSet.BoolVar(&p.expConfig.EnableGraphs, "graph", p.expConfig.EnableGraphs, "Generate visualization charts")
	p.flagSet.BoolVar(&p.expConfig.LogScale, "log-scale", p.expConfig.LogScale, "Use logarithmic scale for Y-axis in charts")
	p.flagSet.StringVar(&p.expConfig.OutputDir, "output-dir", p.expConfig.OutputDir, "Directory for charts and trajectories")
	p.flagSet.StringVar(&p.expConfig.EnvFile, "env-file", p.expConfig.EnvFile, "Optional .env file with NOISER_* variables")
}

// Parse parses command-line arguments and returns configuration
func (p *Parser) Parse(args []string) (*Config, *ExperimentConfig, error) {
	if err := p.flagSet.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	return p.Resolve()
}

// Resolve layers the noise parameters after the flags have been parsed,
// either by Parse or by a command framework sharing FlagSet.
func (p *Parser) Resolve() (*Config, *ExperimentConfig, error) {
	c := p.config
	explicit := map[string]float64{}

	store := NewStore(c.ParamsFile, p.logger)
	stored, warnings, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	c.Warnings = append(c.Warnings, warnings...)
	for key, value := range stored {
		explicit[key] = value
		c.Sources[key] = SourceFile
	}

	env, err := p.environment()
	if err != nil {
		return nil, nil, err
	}
	for key, value := range env {
		explicit[key] = value
		c.Sources[key] = SourceEnv
	}

	flagValues := p.flagNoise.Map()
	for key, name := range flagKeys {
		if p.flagSet.Changed(name) {
			explicit[key] = flagValues[key]
			c.Sources[key] = SourceFlag
		}
	}

	params := Default().Noise
	params.PAdd = 0
	if err := params.Merge(explicit); err != nil {
		return nil, nil, err
	}
	if _, ok := explicit[noise.KeyPAdd]; !ok {
		params.PAdd = noise.DefaultParams(params.PSubtract, params.PEpsilon).PAdd
	}
	c.Noise = params

	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return p.config, p.expConfig, nil
}

func (p *Parser) environment() (map[string]float64, error) {
	if p.expConfig.EnvFile != "" {
		if err := godotenv.Load(p.expConfig.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", p.expConfig.EnvFile, err)
		}
	}

	values := map[string]float64{}
	for key, name := range envKeys {
		raw, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
		}
		values[key] = v
	}
	return values, nil
}

// Validate validates the configuration parameters
func (p *Parser) Validate() error {
	c := p.config
	e := p.expConfig

	warnings, err := c.Noise.Validate()
	if err != nil {
		return err
	}
	c.Warnings = append(c.Warnings, warnings...)

	if e.Dimension < 1 {
		return fmt.Errorf("dimension (%d) must be positive", e.Dimension)
	}

	if e.Budget < 1 {
		return fmt.Errorf("budget (%d) must be positive", e.Budget)
	}

	if e.Workers < 1 {
		return fmt.Errorf("workers (%d) must be positive", e.Workers)
	}

	if e.Repeats < 2 {
		return fmt.Errorf("repeats (%d) must be at least 2 to compare evaluations", e.Repeats)
	}

	if e.Target < 0 {
		return fmt.Errorf("target (%g) must not be negative", e.Target)
	}

	if _, err := optimizer.ParseType(e.Optimizer); err != nil {
		return err
	}

	names := problem.NewRegistry().Names()
	valid := false
	for _, name := range names {
		if strings.ToLower(strings.TrimSpace(e.Problem)) == name {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid problem '%s', must be one of: %v", e.Problem, names)
	}

	return nil
}

// Describe prints the resolved noise parameters and their sources
func (c *Config) Describe(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "PARAMETER\tVALUE\tSOURCE\tENV\n")

	values := c.Noise.Map()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\n", key, values[key], c.Sources[key], envKeys[key])
	}
	if effective := c.Noise.Effective(); effective.PAdd != c.Noise.PAdd {
		fmt.Fprintf(tw, "%s (effective)\t%g\t%s\t\n", noise.KeyPAdd, effective.PAdd, "1-p_subtract")
	}
	fmt.Fprintf(tw, "\nparameter file: %s\n", c.ParamsFile)
	return tw.Flush()
}
