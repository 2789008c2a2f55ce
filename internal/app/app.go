// Package app provides application lifecycle management for vrsync.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mydv/vrsync/internal/config"
)

// VRSyncApp encapsulates all components needed to run the sync service.
// It provides lifecycle management and graceful shutdown capabilities.
type VRSyncApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	stopOnce   sync.Once
}

// Start starts the scheduled sweeps, when enabled, and the HTTP server.
// It blocks until the HTTP server stops or encounters an error.
func (app *VRSyncApp) Start() error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.StartWithListener(listener)
}

// StartWithListener is Start on an already bound listener
func (app *VRSyncApp) StartWithListener(listener net.Listener) error {
	if app.config.Sync.Enabled {
		go func() {
			if err := app.components.SweepCoordinator.Start(app.ctx); err != nil {
				slog.Error("Sweep coordinator failed", "error", err)
			}
		}()
	} else {
		slog.Info("Scheduled sweeps disabled; sweeps run only on demand")
	}

	slog.Info("Server listening", "address", listener.Addr().String())
	if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout. It stops the
// coordinator first, which cancels any running sweep and waits for its
// partial report, then shuts down the HTTP server.
func (app *VRSyncApp) Stop(timeout time.Duration) error {
	var err error
	app.stopOnce.Do(func() {
		err = app.stop(timeout)
	})
	return err
}

func (app *VRSyncApp) stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if err := app.components.SweepCoordinator.Stop(); err != nil {
		slog.Error("Failed to stop sweep coordinator", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := app.httpServer.Shutdown(shutdownCtx)

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *VRSyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *VRSyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired application components
func (app *VRSyncApp) Components() *AppComponents {
	return app.components
}
