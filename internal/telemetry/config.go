package telemetry

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults applied to unset fields
const (
	DefaultServiceName    = "vrsync"
	DefaultEndpoint       = "localhost:4318"
	DefaultSampling       = 0.05
	DefaultPrometheusPath = "/metrics"
)

// Config is the telemetry section of the vrsync configuration. Telemetry
// is off unless Enabled is set; each signal then has its own switch.
type Config struct {
	Enabled        bool   `yaml:"enabled"`
	ServiceName    string `yaml:"serviceName,omitempty"`
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is the OTLP/HTTP collector as host:port
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure sends OTLP over plain HTTP
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing    *TracingConfig    `yaml:"tracing,omitempty"`
	Metrics    *MetricsConfig    `yaml:"metrics,omitempty"`
	Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`
}

// TracingConfig switches OTLP trace export
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is the ratio of traces kept, 0 to 1. Zero means DefaultSampling.
	Sampling float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig switches OTLP metric export
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// PrometheusConfig serves the metrics on a scrape endpoint of the API server
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// GetPath returns the scrape path. Nil-safe.
func (c *PrometheusConfig) GetPath() string {
	if c == nil || c.Path == "" {
		return DefaultPrometheusPath
	}
	return c.Path
}

// PrometheusEnabled reports whether the scrape endpoint is served. Nil-safe.
func (c *Config) PrometheusEnabled() bool {
	return c != nil && c.Enabled && c.Prometheus != nil && c.Prometheus.Enabled
}

func (c *Config) tracingEnabled() bool {
	return c != nil && c.Enabled && c.Tracing != nil && c.Tracing.Enabled
}

func (c *Config) otlpMetricsEnabled() bool {
	return c != nil && c.Enabled && c.Metrics != nil && c.Metrics.Enabled
}

// GetServiceName returns the service name or DefaultServiceName
func (c *Config) GetServiceName() string {
	return valueOr(c.ServiceName, DefaultServiceName)
}

// GetServiceVersion returns the service version or "unknown"
func (c *Config) GetServiceVersion() string {
	return valueOr(c.ServiceVersion, "unknown")
}

// GetEndpoint returns the collector endpoint or DefaultEndpoint
func (c *Config) GetEndpoint() string {
	return valueOr(c.Endpoint, DefaultEndpoint)
}

// GetSampling returns the sampling ratio. YAML cannot tell an explicit 0
// from an unset field, so 0 selects DefaultSampling.
func (c *TracingConfig) GetSampling() float64 {
	if c == nil || c.Sampling == 0 {
		return DefaultSampling
	}
	return c.Sampling
}

// Validate checks an enabled configuration. Nil and disabled configurations
// are valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if c.Tracing != nil && c.Tracing.Enabled && (c.Tracing.Sampling < 0 || c.Tracing.Sampling > 1) {
		errs = append(errs, fmt.Errorf("tracing: sampling must be between 0.0 and 1.0, got %f", c.Tracing.Sampling))
	}
	if strings.Contains(c.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("endpoint must be host:port without a scheme, got %q", c.Endpoint))
	}
	if c.PrometheusEnabled() && !strings.HasPrefix(c.Prometheus.GetPath(), "/") {
		errs = append(errs, fmt.Errorf("prometheus: path must start with '/', got %q", c.Prometheus.Path))
	}
	return errors.Join(errs...)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
