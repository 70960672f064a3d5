package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/schemadiff/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *c.cfg
			if listen != "" {
				cfg.Server.Listen = listen
			}

			engine, hist, cleanup := c.newEngine(&cfg)
			defer cleanup()

			// A nil *history.Store must not become a non-nil interface.
			var reader server.HistoryReader
			if hist != nil {
				reader = hist
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, c.logger, engine, reader)
			return srv.ListenAndServe(ctx, cfg.Server.Listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address, overrides the config file")
	return cmd
}
