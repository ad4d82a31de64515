package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/brianbland/noisifier/pkg/config"
)

func (a *app) newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Show or store the noise parameters",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved noise parameters and where they came from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cfg.Describe(cmd.OutOrStdout())
		},
	}

	dump := &cobra.Command{
		Use:   "dump",
		Short: "Write the resolved noise parameters to the parameter file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := config.NewStore(a.cfg.ParamsFile, a.logger)
			if err := store.Save(a.cfg.Noise); err != nil {
				return err
			}
			a.logger.Info("noise parameters saved", slog.String("file", store.Path()))
			fmt.Fprintf(cmd.OutOrStdout(), "%s written to %s\n", a.cfg.Noise, store.Path())
			return nil
		},
	}

	cmd.AddCommand(show, dump)
	return cmd
}
