package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup endpoints and the forms API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			forms, err := a.forms()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, a.cfg, forms, server.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()
			return srv.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (default :8080)")
	flags.String("base-path", "", "mount prefix for the lookup endpoints")
	flags.Duration("delay", 0, "artificial latency added to lookup responses")
	flags.String("store", "", "lookup store: memory or sqlite")
	flags.String("sqlite-dsn", "", "SQLite DSN for the sqlite store")
	a.bind(flags, map[string]string{
		"addr":       "server.addr",
		"base-path":  "lookup.base_path",
		"delay":      "lookup.delay",
		"store":      "lookup.store",
		"sqlite-dsn": "lookup.sqlite_dsn",
	})
	return cmd
}
