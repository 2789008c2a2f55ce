// Package stats reports how fresh the cached registry facts are.
package stats

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/mydv/vrsync/internal/otel"
	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/vehicles"
)

// DefaultThreshold matches the selector's staleness threshold
const DefaultThreshold = 7 * 24 * time.Hour

// Stats is the freshness breakdown of the eligible vehicles
type Stats struct {
	Total          int `json:"total"`
	WithData       int `json:"withData"`
	NeedingRefresh int `json:"needingRefresh"`
	ValidStatus    int `json:"validStatus"`
	ExpiredStatus  int `json:"expiredStatus"`
	UnknownStatus  int `json:"unknownStatus"`
}

//go:generate mockgen -destination=mocks/mock_aggregator.go -package=mocks github.com/mydv/vrsync/internal/stats Aggregator

// Aggregator computes Stats straight from storage. It does not depend on any
// sweep having run.
type Aggregator interface {
	// Stats covers one tenant, or every tenant when tenantID is empty
	Stats(ctx context.Context, tenantID string) (*Stats, error)
}

type storeAggregator struct {
	store     store.Store
	clock     clock.PassiveClock
	threshold time.Duration
	tracer    trace.Tracer
}

// Option configures the aggregator
type Option func(*storeAggregator)

// WithClock sets the clock used for the staleness test
func WithClock(c clock.PassiveClock) Option {
	return func(a *storeAggregator) {
		a.clock = c
	}
}

// WithThreshold sets the staleness threshold
func WithThreshold(threshold time.Duration) Option {
	return func(a *storeAggregator) {
		if threshold > 0 {
			a.threshold = threshold
		}
	}
}

// WithTracer sets the OpenTelemetry tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(a *storeAggregator) {
		a.tracer = tracer
	}
}

// New creates an Aggregator reading from st
func New(st store.Store, opts ...Option) Aggregator {
	a := &storeAggregator{
		store:     st,
		clock:     clock.RealClock{},
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stats implements Aggregator
func (a *storeAggregator) Stats(ctx context.Context, tenantID string) (*Stats, error) {
	ctx, span := otel.StartSpan(ctx, a.tracer, "stats.Stats",
		trace.WithAttributes(otel.AttrTenantID.String(tenantID)),
	)
	defer span.End()

	eligible, err := a.store.ListEligibleVehicles(ctx, tenantID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load eligible vehicles: %w", err)
	}

	out := &Stats{}
	if len(eligible) == 0 {
		return out, nil
	}

	records, err := a.store.ListRecords(ctx, store.Registrations(eligible))
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load registry records: %w", err)
	}

	now := a.clock.Now()
	for i := range eligible {
		v := &eligible[i]
		if !v.Eligible() {
			continue
		}
		out.Total++

		var (
			checkedAt *time.Time
			status    string
		)
		if rec, ok := records[v.NormalizedRegistration()]; ok {
			checkedAt = rec.CheckedAt
			status = rec.Facts.RoadworthinessStatus
		}

		if checkedAt != nil {
			out.WithData++
		}
		if vehicles.IsStale(checkedAt, now, a.threshold) {
			out.NeedingRefresh++
		}

		switch vehicles.ClassifyStatus(status) {
		case vehicles.BucketValid:
			out.ValidStatus++
		case vehicles.BucketExpired:
			out.ExpiredStatus++
		default:
			out.UnknownStatus++
		}
	}

	return out, nil
}
