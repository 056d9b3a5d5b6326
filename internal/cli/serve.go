package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cheetahbyte/licensemgr/internal/config"
	"github.com/cheetahbyte/licensemgr/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the license server",
		Long:  `Start the HTTP API. Settings come from the environment and an optional .env file (PORT, LICENSE_TTL, SWEEP_INTERVAL, ...).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			config.NewLogger(cfg.Logging, os.Stdout)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg).Run(ctx)
		},
	}
}
