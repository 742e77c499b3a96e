package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd runs the HTTP API with a background refresher
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the vault list over HTTP",
	Long: `Starts the HTTP API and refreshes the vault list every refresh_interval
until interrupted. The stored snapshot is served until the first fetch lands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner, err := newRunner()
		if err != nil {
			return err
		}
		defer func() { _ = runner.Close(context.Background()) }()

		if listenAddr != "" {
			runner.Config().ListenAddr = listenAddr
		}
		runner.Warm(ctx)
		return runner.Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (defaults to listen_addr)")
}
