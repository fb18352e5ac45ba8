// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search page and JSON API",
	Long: `Serve starts the HTTP server. It renders the search page at / and /search,
answers the JSON API under /api/, and exposes Prometheus metrics at /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics := server.NewMetrics()
	cfg, log, registry, err := setup(metrics)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Searcher: registry,
		Metrics:  metrics,
		Config:   cfg,
		Log:      log,
	}
	store, err := openHistory(cfg, log)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		deps.History = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(deps).Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", ":8000", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
