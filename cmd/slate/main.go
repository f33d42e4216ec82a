package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/slatehq/slate/internal/observability"
	"github.com/slatehq/slate/internal/server"
	"github.com/slatehq/slate/internal/store"
)

var logLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "slate",
	Short: "Slate — marketing task management server",
	Long:  "Campaigns, Kanban tasks, a content calendar, and dashboard statistics over a REST API with embedded SQLite.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Slate API server",
	RunE:  runServer,
}

var (
	bindAddr        string
	dataDir         string
	corsOrigin      string
	otelEnabled     bool
	otelEndpoint    string
	shutdownTimeout time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	serverCmd.Flags().StringVar(&bindAddr, "bind", envOr("SLATE_BIND", ":"+envOr("PORT", "3000")), "HTTP server bind address")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", envOr("SLATE_DATA_DIR", "data"), "Directory for the SQLite database")
	serverCmd.Flags().StringVar(&corsOrigin, "cors-origin", envOr("SLATE_CORS_ORIGIN", "*"), "Allowed CORS origin")
	serverCmd.Flags().BoolVar(&otelEnabled, "otel-enabled", false, "Enable OpenTelemetry tracing")
	serverCmd.Flags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP HTTP endpoint (host:port) for traces; if empty uses stdout exporter")
	serverCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful HTTP shutdown timeout before force-close")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(seedCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupLogging() {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func runServer(cmd *cobra.Command, args []string) error {
	slog.Info("starting slate server",
		"bind", bindAddr,
		"data_dir", dataDir,
		"cors_origin", corsOrigin,
		"otel_enabled", otelEnabled,
		"shutdown_timeout", shutdownTimeout,
	)

	otelShutdown, err := observability.Setup(observability.Config{
		Enabled:  otelEnabled,
		Endpoint: otelEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Warn("otel shutdown error", "error", err)
		}
	}()

	db, err := store.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(store.NewStore(db), bindAddr, corsOrigin)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
	}
	return nil
}
