// cmd/api/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"regiodash/internal/config"
	"regiodash/internal/observability"
)

func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "regiodash",
		Short: "Regional housing statistics dashboard",
		Long: `Regiodash serves a choropleth map of Dutch municipalities with
per-region time series of the CBS regional key figures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
		SilenceUsage: true,
	}

	addServeCmd(rootCmd)
	addCheckCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addServeCmd adds the 'serve' subcommand, also the default action
func addServeCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Load the data and serve the dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	})
}

// addCheckCmd adds the 'check' subcommand that loads everything and exits
func addCheckCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load configuration, data and boundaries and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := observability.NewLogger(cfg.Log)

			ds, err := loadDataset(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer ds.Close()

			cmd.Printf("source:     %s\n", cfg.Data.Source)
			cmd.Printf("regions:    %d\n", ds.catalog.Len())
			cmd.Printf("years:      %v\n", ds.catalog.Years())
			cmd.Printf("boundaries: %v\n", ds.boundaries.Years())
			if missing := ds.boundaries.Missing(); len(missing) > 0 {
				cmd.Printf("missing:    %v\n", missing)
			}
			for _, v := range ds.catalog.Variables() {
				cmd.Printf("variable:   %s (%s)\n", v.Column, v.Label)
			}
			return nil
		},
	})
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := observability.NewLogger(cfg.Log)

	// Setup context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer app.Close()

	// Start HTTP server
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Server.Addr())
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("HTTP server error", "error", err)
		return err
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := app.registry.Stop(shutdownCtx); err != nil {
		logger.Error("session registry shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
