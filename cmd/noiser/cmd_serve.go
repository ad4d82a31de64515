package main

import (
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/brianbland/noisifier/pkg/randomizer"
	"github.com/brianbland/noisifier/pkg/server"
)

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the frozen samplers and the noise policy over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			opts := []server.Option{
				server.WithParams(a.cfg.Noise),
				server.WithRegistry(reg),
				server.WithLogger(a.logger),
			}
			if a.exp.Unfrozen {
				opts = append(opts, server.WithSamplerOptions(
					randomizer.WithUnfrozen(rand.New(rand.NewSource(a.exp.Seed))),
				))
			}
			s, err := server.New(opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
