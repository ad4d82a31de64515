// Package randomizer provides frozen random numbers for perturbing objective
// values. Every draw is a pure function of a coordinate vector and a stream
// index: the generator state is rebuilt from a derived seed on each call, so
// evaluating the same point twice yields the same numbers, in this process or
// in any other.
package randomizer

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
)

// Func draws one random number for the point x on the given stream. It is the
// shape shared by Rand, Randn and Randc and by any replacement sampler.
type Func func(x []float64, stream int) float64

// Recorder receives every seed a Sampler derives. Recording is diagnostic
// only and never influences the numbers drawn.
type Recorder interface {
	RecordSeed(seed float64)
}

// Diagnostic reports the local recoveries made while drawing numbers.
type Diagnostic struct {
	// NonFiniteSeed is set when the derived seed was not finite and 1 was
	// used instead.
	NonFiniteSeed bool

	// ZeroCorrections counts uniform values that came out exactly 0 and were
	// replaced by 1e-99.
	ZeroCorrections int
}

// OK reports whether no recovery was needed.
func (d Diagnostic) OK() bool {
	return !d.NonFiniteSeed && d.ZeroCorrections == 0
}

// Sampler holds what the sampling functions need beyond their arguments: where
// to log warnings, where to record seeds, and whether noise is frozen at all.
// A Sampler is safe for concurrent use.
type Sampler struct {
	logger   *slog.Logger
	recorder Recorder

	// unfrozen replaces derived seeds by random ones when set
	mu       sync.Mutex
	unfrozen *rand.Rand
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger used for warnings. By default slog.Default() is
// consulted on every warning.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithRecorder attaches a seed recorder such as a SeedRing.
func WithRecorder(recorder Recorder) Option {
	return func(s *Sampler) {
		s.recorder = recorder
	}
}

// WithUnfrozen makes the sampler ignore the input point and draw seeds from
// rng instead. Noise is then no longer reproducible from x alone.
func WithUnfrozen(rng *rand.Rand) Option {
	return func(s *Sampler) {
		s.unfrozen = rng
	}
}

// NewSampler creates a frozen sampler unless WithUnfrozen is given.
func NewSampler(opts ...Option) *Sampler {
	s := &Sampler{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Frozen reports whether draws depend on the input point only.
func (s *Sampler) Frozen() bool {
	return s.unfrozen == nil
}

func (s *Sampler) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Seed derives the seed for x on the given stream, recording it and logging
// any recovery.
func (s *Sampler) Seed(x []float64, stream int) float64 {
	var seed float64
	if s.unfrozen != nil {
		s.mu.Lock()
		u := s.unfrozen.Float64()
		s.mu.Unlock()
		seed = 1e4 / (u + 1e-22)
	} else {
		var diag Diagnostic
		seed, diag = DeriveSeed(x, stream)
		s.report(x, stream, diag)
	}
	if s.recorder != nil {
		s.recorder.RecordSeed(seed)
	}
	return seed
}

// Rand returns a uniform value in (0, 1) for x on the given stream.
func (s *Sampler) Rand(x []float64, stream int) float64 {
	r, diag := Uniform(1, s.Seed(x, stream))
	s.report(x, stream, diag)
	return r[0]
}

// Randn returns a standard normal value for x on the given stream.
func (s *Sampler) Randn(x []float64, stream int) float64 {
	g, diag := Gaussian(1, s.Seed(x, stream))
	s.report(x, stream, diag)
	return g[0]
}

// Randc returns a Cauchy distributed value for x on the given stream. The
// median of its absolute value is 1 and P(pi/2 * |Z| > a) is close to 1/a.
func (s *Sampler) Randc(x []float64, stream int) float64 {
	c, diag := Cauchy(1, s.Seed(x, stream))
	s.report(x, stream, diag)
	return c[0]
}

func (s *Sampler) report(x []float64, stream int, diag Diagnostic) {
	if diag.OK() {
		return
	}
	if diag.NonFiniteSeed {
		s.log().Warn("seed is not finite, using 1 instead",
			slog.String("x", fmt.Sprint(leading(x))), slog.Int("stream", stream))
	}
	if diag.ZeroCorrections > 0 {
		s.log().Warn(fmt.Sprintf("zero sampled %d times, set to 1e-99", diag.ZeroCorrections),
			slog.Int("stream", stream))
	}
}

func leading(x []float64) []float64 {
	if len(x) > 2 {
		return x[:2]
	}
	return x
}

var defaultSampler = NewSampler()

// Rand returns a frozen uniform value in (0, 1) seeded with x[:2] and stream.
func Rand(x []float64, stream int) float64 { return defaultSampler.Rand(x, stream) }

// Randn returns a frozen standard normal value seeded with x[:2] and stream.
func Randn(x []float64, stream int) float64 { return defaultSampler.Randn(x, stream) }

// Randc returns a frozen Cauchy value seeded with x[:2] and stream.
func Randc(x []float64, stream int) float64 { return defaultSampler.Randc(x, stream) }
