// Package metrics exposes noise activity as Prometheus metrics. A Collector
// observes noise samples and records derived seeds, so it can be attached to
// a noise policy and a sampler at the same time.
package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/randomizer"
)

const namespace = "noiser"

// Collector holds the noise metrics.
type Collector struct {
	// EventsTotal counts noise draws by outlier event (none, add, subtract).
	EventsTotal *prometheus.CounterVec

	// JitterTotal counts draws where Gaussian jitter fired.
	JitterTotal prometheus.Counter

	// SeedsTotal counts seeds derived by an instrumented sampler.
	SeedsTotal prometheus.Counter

	// Magnitude is the distribution of |noise| over all draws.
	Magnitude prometheus.Histogram
}

// New registers the metrics on reg. Passing prometheus.NewRegistry() keeps
// tests and servers isolated from the global registry.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "noise_events_total",
			Help:      "Noise draws by outlier event.",
		}, []string{"event"}),
		JitterTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jitter_applied_total",
			Help:      "Noise draws where Gaussian jitter was applied.",
		}),
		SeedsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeds_recorded_total",
			Help:      "Seeds derived by instrumented samplers.",
		}),
		Magnitude: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "noise_magnitude",
			Help:      "Absolute value of the additive noise.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 10),
		}),
	}
}

// ObserveNoise implements noise.Observer.
func (c *Collector) ObserveNoise(s noise.Sample) {
	c.EventsTotal.WithLabelValues(s.Event.String()).Inc()
	if s.Jittered {
		c.JitterTotal.Inc()
	}
	c.Magnitude.Observe(math.Abs(s.Value))
}

// RecordSeed implements randomizer.Recorder.
func (c *Collector) RecordSeed(float64) {
	c.SeedsTotal.Inc()
}

// Recorders fans seeds out to several recorders, e.g. a SeedRing and a
// Collector.
type Recorders []randomizer.Recorder

// RecordSeed implements randomizer.Recorder.
func (rs Recorders) RecordSeed(seed float64) {
	for _, r := range rs {
		r.RecordSeed(seed)
	}
}

var (
	_ noise.Observer      = (*Collector)(nil)
	_ randomizer.Recorder = (*Collector)(nil)
	_ randomizer.Recorder = Recorders(nil)
)
