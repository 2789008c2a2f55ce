package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SweepMetricsMeterName is the name used for the sweep metrics meter
	SweepMetricsMeterName = "github.com/mydv/vrsync/sync"
)

// SweepMetrics holds the OpenTelemetry instruments for registry sweeps
type SweepMetrics struct {
	sweepDuration metric.Float64Histogram
	lookupsTotal  metric.Int64Counter
	candidates    metric.Int64Gauge
}

// NewSweepMetrics creates a new SweepMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSweepMetrics(provider metric.MeterProvider) (*SweepMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SweepMetricsMeterName)

	sweepDuration, err := meter.Float64Histogram(
		"vrsync_sweep_duration_seconds",
		metric.WithDescription("Duration of registry sweeps in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600),
	)
	if err != nil {
		return nil, err
	}

	lookupsTotal, err := meter.Int64Counter(
		"vrsync_lookups_total",
		metric.WithDescription("Registry lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	candidates, err := meter.Int64Gauge(
		"vrsync_sweep_candidates",
		metric.WithDescription("Number of vehicles selected by the last sweep"),
		metric.WithUnit("{vehicle}"),
	)
	if err != nil {
		return nil, err
	}

	return &SweepMetrics{
		sweepDuration: sweepDuration,
		lookupsTotal:  lookupsTotal,
		candidates:    candidates,
	}, nil
}

// RecordSweepDuration records the duration of a finished sweep
func (m *SweepMetrics) RecordSweepDuration(ctx context.Context, tenantID string, duration time.Duration, cancelled bool) {
	if m == nil || m.sweepDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tenant", tenantOrAll(tenantID)),
		attribute.Bool("cancelled", cancelled),
	}

	m.sweepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordLookup counts one vehicle outcome. outcome is "success", an error
// kind, or "persistence".
func (m *SweepMetrics) RecordLookup(ctx context.Context, outcome string, attempts int) {
	if m == nil || m.lookupsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("outcome", outcome),
		attribute.Int("attempts", attempts),
	}

	m.lookupsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCandidates records how many vehicles a sweep selected
func (m *SweepMetrics) RecordCandidates(ctx context.Context, tenantID string, count int) {
	if m == nil || m.candidates == nil {
		return
	}

	m.candidates.Record(ctx, int64(count), metric.WithAttributes(attribute.String("tenant", tenantOrAll(tenantID))))
}

func tenantOrAll(tenantID string) string {
	if tenantID == "" {
		return "all"
	}
	return tenantID
}
