package helpers

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/onsi/gomega"

	vrsyncapp "github.com/mydv/vrsync/internal/app"
	"github.com/mydv/vrsync/internal/config"
	"github.com/mydv/vrsync/internal/telemetry"
)

// ServerTestHelper manages the vrsync server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	httpClient *http.Client
	app        *vrsyncapp.VRSyncApp
	tel        *telemetry.Telemetry
}

// NewServerTestHelper creates a new server test helper
func NewServerTestHelper(ctx context.Context, configPath string) *ServerTestHelper {
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StartServer builds the application the way `vrsync serve` does and serves
// it on a random local port
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s.tel, err = telemetry.New(s.ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	opts := []vrsyncapp.VRSyncAppOptions{
		vrsyncapp.WithConfig(cfg),
		vrsyncapp.WithMeterProvider(s.tel.MeterProvider()),
		vrsyncapp.WithTracerProvider(s.tel.TracerProvider()),
	}
	if cfg.Telemetry.PrometheusEnabled() {
		opts = append(opts, vrsyncapp.WithMetricsHandler(cfg.Telemetry.Prometheus.GetPath(), s.tel.PrometheusHandler()))
	}

	app, err := vrsyncapp.NewVRSyncApp(s.ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.baseURL = "http://" + listener.Addr().String()

	go func() {
		if err := app.StartWithListener(listener); err != nil {
			// The test will fail when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the server
func (s *ServerTestHelper) StopServer() error {
	var err error
	if s.app != nil {
		err = s.app.Stop(5 * time.Second)
	}
	if s.tel != nil {
		_ = s.tel.Shutdown(context.Background())
	}
	return err
}

// WaitForServerReady waits for the server to be ready to accept requests
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// TriggerSweep makes a POST request to /v1/sweeps with body as the JSON payload
func (s *ServerTestHelper) TriggerSweep(body string) (*http.Response, error) {
	return s.httpClient.Post(s.baseURL+"/v1/sweeps", "application/json", bytes.NewBufferString(body))
}

// RefreshVehicle makes a POST request to /v1/vehicles/{id}/refresh
func (s *ServerTestHelper) RefreshVehicle(vehicleID string) (*http.Response, error) {
	return s.httpClient.Post(fmt.Sprintf("%s/v1/vehicles/%s/refresh", s.baseURL, vehicleID), "application/json", nil)
}

// GetStats makes a GET request to /v1/stats, optionally for one tenant
func (s *ServerTestHelper) GetStats(tenantID string) (*http.Response, error) {
	url := s.baseURL + "/v1/stats"
	if tenantID != "" {
		url += "?tenantId=" + tenantID
	}
	return s.httpClient.Get(url)
}

// GetSweepStatuses makes a GET request to /v1/sweeps/status
func (s *ServerTestHelper) GetSweepStatuses() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/v1/sweeps/status")
}

// Get makes a GET request to an arbitrary path
func (s *ServerTestHelper) Get(path string) (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + path)
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}
