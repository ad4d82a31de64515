// Package server exposes the frozen samplers and the noise policy over HTTP
// so that noise models in other processes draw exactly the same numbers.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brianbland/noisifier/pkg/metrics"
	"github.com/brianbland/noisifier/pkg/noise"
	"github.com/brianbland/noisifier/pkg/randomizer"
)

// MaxPoints limits the points of a single noise request.
const MaxPoints = 10000

const shutdownTimeout = 5 * time.Second

// Server serves the sampling and noise endpoints.
type Server struct {
	router    *chi.Mux
	params    noise.Params
	sampler   *randomizer.Sampler
	sampling  []randomizer.Option
	registry  *prometheus.Registry
	collector *metrics.Collector
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithParams sets the noise parameters requests start from.
func WithParams(params noise.Params) Option {
	return func(s *Server) {
		s.params = params
	}
}

// WithSamplerOptions configures the server's sampler, e.g. with
// randomizer.WithUnfrozen. Seeds are always recorded in the server's metrics.
func WithSamplerOptions(opts ...randomizer.Option) Option {
	return func(s *Server) {
		s.sampling = append(s.sampling, opts...)
	}
}

// WithRegistry registers the metrics on reg and serves reg on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithLogger sets the request and warning logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server with default noise parameters, a frozen sampler and a
// private metrics registry unless options say otherwise.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		params: noise.DefaultParams(0, 0),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.params.Validate(); err != nil {
		return nil, err
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.collector = metrics.New(s.registry)
	s.sampler = randomizer.NewSampler(append([]randomizer.Option{
		randomizer.WithLogger(s.logger),
		randomizer.WithRecorder(s.collector),
	}, s.sampling...)...)
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rand", s.handleSample(s.sampler.Rand))
		r.Get("/randn", s.handleSample(s.sampler.Randn))
		r.Get("/randc", s.handleSample(s.sampler.Randc))
		r.Post("/noise", s.handleNoise)
		r.Get("/params", s.handleParams)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Collector returns the metrics collector fed by the server.
func (s *Server) Collector() *metrics.Collector {
	return s.collector
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("noise server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
