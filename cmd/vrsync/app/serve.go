package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	vrsyncapp "github.com/mydv/vrsync/internal/app"
	"github.com/mydv/vrsync/internal/config"
	"github.com/mydv/vrsync/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync server",
	Long: `Start the sync server: the HTTP API plus, when sync.enabled is set, the
scheduled sweeps.

The server requires a configuration file (--config) that specifies:
- The registry endpoint and retry policy
- Sweep sizing, pacing and schedule
- The storage backend and database connection

See examples/ directory for sample configurations.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	telemetryShutdownTime  = 5 * time.Second
)

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		panic(fmt.Sprintf("failed to bind address flag: %v", err))
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		panic(fmt.Sprintf("failed to bind config flag: %v", err))
	}
	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		panic(fmt.Sprintf("failed to mark config flag as required: %v", err))
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Configuration loaded",
		"path", configPath,
		"storage", cfg.Storage.GetType(),
		"sync_enabled", cfg.Sync.Enabled,
		"interval", cfg.Sync.GetInterval().String(),
	)

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTime)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shut down telemetry", "error", err)
		}
	}()

	opts := []vrsyncapp.VRSyncAppOptions{
		vrsyncapp.WithConfig(cfg),
		vrsyncapp.WithAddress(viper.GetString("address")),
		vrsyncapp.WithMeterProvider(tel.MeterProvider()),
		vrsyncapp.WithTracerProvider(tel.TracerProvider()),
	}
	if cfg.Telemetry.PrometheusEnabled() {
		opts = append(opts, vrsyncapp.WithMetricsHandler(cfg.Telemetry.Prometheus.GetPath(), tel.PrometheusHandler()))
	}

	server, err := vrsyncapp.NewVRSyncApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			_ = server.Stop(defaultGracefulTimeout)
			return err
		}
	}

	return server.Stop(defaultGracefulTimeout)
}
