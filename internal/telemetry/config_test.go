package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "nil", cfg: nil},
		{name: "disabled ignores bad values", cfg: &Config{Endpoint: "http://collector:4318"}},
		{
			name: "valid",
			cfg: &Config{
				Enabled:    true,
				Endpoint:   "collector:4318",
				Tracing:    &TracingConfig{Enabled: true, Sampling: 0.25},
				Prometheus: &PrometheusConfig{Enabled: true, Path: "/metrics"},
			},
		},
		{
			name:    "sampling above one",
			cfg:     &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 1.5}},
			wantErr: "sampling must be between",
		},
		{
			name:    "endpoint with scheme",
			cfg:     &Config{Enabled: true, Endpoint: "https://collector:4318"},
			wantErr: "without a scheme",
		},
		{
			name:    "relative prometheus path",
			cfg:     &Config{Enabled: true, Prometheus: &PrometheusConfig{Enabled: true, Path: "metrics"}},
			wantErr: "must start with '/'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.Equal(t, DefaultSampling, (*TracingConfig)(nil).GetSampling())
	assert.Equal(t, 0.5, (&TracingConfig{Sampling: 0.5}).GetSampling())
	assert.Equal(t, DefaultPrometheusPath, (*PrometheusConfig)(nil).GetPath())
	assert.Equal(t, "/scrape", (&PrometheusConfig{Path: "/scrape"}).GetPath())
}

func TestConfig_SignalSwitches(t *testing.T) {
	t.Parallel()

	var nilCfg *Config
	assert.False(t, nilCfg.PrometheusEnabled())
	assert.False(t, nilCfg.tracingEnabled())

	// signals stay off while the top-level switch is off
	cfg := &Config{
		Tracing:    &TracingConfig{Enabled: true},
		Metrics:    &MetricsConfig{Enabled: true},
		Prometheus: &PrometheusConfig{Enabled: true},
	}
	assert.False(t, cfg.PrometheusEnabled())
	assert.False(t, cfg.tracingEnabled())
	assert.False(t, cfg.otlpMetricsEnabled())

	cfg.Enabled = true
	assert.True(t, cfg.PrometheusEnabled())
	assert.True(t, cfg.tracingEnabled())
	assert.True(t, cfg.otlpMetricsEnabled())
}
