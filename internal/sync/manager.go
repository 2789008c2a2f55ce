package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/mydv/vrsync/internal/enquiry"
	"github.com/mydv/vrsync/internal/otel"
	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/sync/selector"
	"github.com/mydv/vrsync/internal/sync/writer"
	"github.com/mydv/vrsync/internal/telemetry"
	"github.com/mydv/vrsync/internal/vehicles"
)

// Default pacing
const (
	DefaultBatchSize    = 5
	DefaultRequestDelay = 2 * time.Second
	DefaultBatchDelay   = 5 * time.Second
)

// Options is the immutable pacing configuration of a Manager
type Options struct {
	// BatchSize is the number of vehicles per group
	BatchSize int
	// RequestDelay is the pause between vehicles of one group
	RequestDelay time.Duration
	// BatchDelay is the pause between groups
	BatchDelay time.Duration
}

// DefaultOptions returns the default pacing
func DefaultOptions() Options {
	return Options{
		BatchSize:    DefaultBatchSize,
		RequestDelay: DefaultRequestDelay,
		BatchDelay:   DefaultBatchDelay,
	}
}

// Manager runs registry sweeps and single-vehicle refreshes
//
//go:generate mockgen -destination=mocks/mock_manager.go -package=mocks github.com/mydv/vrsync/internal/sync Manager
type Manager interface {
	// RunSweep selects the stale vehicles and refreshes them in paced groups.
	// The error is non-nil only when selection fails.
	RunSweep(ctx context.Context, opts SweepOptions) (*SweepReport, error)

	// RefreshVehicle looks up and commits one vehicle immediately
	RefreshVehicle(ctx context.Context, vehicleID uuid.UUID) RefreshResult
}

type defaultManager struct {
	store    store.Store
	selector selector.Selector
	client   enquiry.Client
	writer   writer.SyncWriter
	pacer    Pacer
	clock    clock.PassiveClock
	opts     Options
	metrics  *telemetry.SweepMetrics
	tracer   trace.Tracer
}

// Option configures the manager
type Option func(*defaultManager)

// WithOptions sets the pacing configuration. A non-positive BatchSize or a
// negative delay keeps the default.
func WithOptions(opts Options) Option {
	return func(m *defaultManager) {
		if opts.BatchSize > 0 {
			m.opts.BatchSize = opts.BatchSize
		}
		if opts.RequestDelay >= 0 {
			m.opts.RequestDelay = opts.RequestDelay
		}
		if opts.BatchDelay >= 0 {
			m.opts.BatchDelay = opts.BatchDelay
		}
	}
}

// WithPacer sets the pacer used between requests and groups
func WithPacer(p Pacer) Option {
	return func(m *defaultManager) {
		m.pacer = p
	}
}

// WithClock sets the clock used for report timestamps
func WithClock(c clock.PassiveClock) Option {
	return func(m *defaultManager) {
		m.clock = c
	}
}

// WithSweepMetrics sets the metrics recorder. Nil disables metrics.
func WithSweepMetrics(metrics *telemetry.SweepMetrics) Option {
	return func(m *defaultManager) {
		m.metrics = metrics
	}
}

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *defaultManager) {
		m.tracer = tracer
	}
}

// NewManager creates a Manager
func NewManager(
	st store.Store,
	sel selector.Selector,
	client enquiry.Client,
	w writer.SyncWriter,
	opts ...Option,
) Manager {
	m := &defaultManager{
		store:    st,
		selector: sel,
		client:   client,
		writer:   w,
		pacer:    NewClockPacer(),
		clock:    clock.RealClock{},
		opts:     DefaultOptions(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunSweep implements Manager
func (m *defaultManager) RunSweep(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	batchSize := m.opts.BatchSize
	if opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}

	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.RunSweep",
		trace.WithAttributes(
			otel.AttrTenantID.String(opts.TenantID),
			otel.AttrForce.Bool(opts.ForceRefresh),
			otel.AttrBatchSize.Int(batchSize),
		),
	)
	defer span.End()

	report := &SweepReport{StartedAt: m.clock.Now()}

	candidates, err := m.selector.Select(ctx, selector.Options{
		TenantID: opts.TenantID,
		ForceAll: opts.ForceRefresh,
	})
	if err != nil {
		otel.RecordError(span, err)
		slog.Error("Sweep aborted, candidate selection failed", "tenant_id", opts.TenantID, "error", err)
		return nil, fmt.Errorf("failed to select sweep candidates: %w", err)
	}

	report.Candidates = len(candidates)
	report.Outcomes = make([]Outcome, 0, len(candidates))
	span.SetAttributes(otel.AttrCandidates.Int(len(candidates)))
	m.metrics.RecordCandidates(ctx, opts.TenantID, len(candidates))

	groups := partition(candidates, batchSize)
	slog.Info("Sweep started",
		"tenant_id", opts.TenantID,
		"force", opts.ForceRefresh,
		"candidates", len(candidates),
		"groups", len(groups),
		"batch_size", batchSize,
	)

	report.Cancelled = m.processGroups(ctx, groups, report)

	report.FinishedAt = m.clock.Now()
	m.metrics.RecordSweepDuration(ctx, opts.TenantID, report.Duration(), report.Cancelled)
	span.SetAttributes(
		attribute.Int("sweep.processed", report.Processed),
		attribute.Int("sweep.updated", report.Updated),
		attribute.Int("sweep.errors", report.Errors),
		attribute.Bool("sweep.cancelled", report.Cancelled),
	)

	slog.Info("Sweep completed",
		"tenant_id", opts.TenantID,
		"processed", report.Processed,
		"updated", report.Updated,
		"errors", report.Errors,
		"cancelled", report.Cancelled,
		"duration", report.Duration().String(),
	)
	return report, nil
}

// processGroups refreshes every vehicle in order and reports whether the
// sweep was cancelled before it finished.
func (m *defaultManager) processGroups(ctx context.Context, groups [][]vehicles.Vehicle, report *SweepReport) bool {
	for gi, group := range groups {
		if gi > 0 {
			slog.Debug("Pausing between groups", "delay", m.opts.BatchDelay.String(), "next_group", gi+1)
			if err := m.pacer.Pause(ctx, m.opts.BatchDelay); err != nil {
				return true
			}
		}
		report.Groups++

		for vi := range group {
			if vi > 0 {
				if err := m.pacer.Pause(ctx, m.opts.RequestDelay); err != nil {
					return true
				}
			}
			if ctx.Err() != nil {
				return true
			}

			outcome := m.refresh(ctx, &group[vi])
			if !outcome.Success && ctx.Err() != nil {
				// the lookup was cut short by the cancellation, not by the registry
				return true
			}
			report.add(outcome)
		}

		slog.Debug("Group completed", "group", gi+1, "of", len(groups), "processed", report.Processed)
	}
	return false
}

// RefreshVehicle implements Manager
func (m *defaultManager) RefreshVehicle(ctx context.Context, vehicleID uuid.UUID) RefreshResult {
	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.RefreshVehicle",
		trace.WithAttributes(otel.AttrVehicleID.String(vehicleID.String())),
	)
	defer span.End()

	v, err := m.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		otel.RecordError(span, err)
		if errors.Is(err, store.ErrVehicleNotFound) {
			return RefreshResult{Error: ErrorKindVehicleNotFound, Message: err.Error()}
		}
		slog.Error("Failed to load vehicle for refresh", "vehicle_id", vehicleID, "error", err)
		return RefreshResult{Error: ErrorKindStorage, Message: err.Error()}
	}

	if !v.Eligible() {
		return RefreshResult{
			Error:   ErrorKindIneligible,
			Message: fmt.Sprintf("vehicle %s is archived or has no registration", vehicleID),
		}
	}

	return m.refresh(ctx, v).result()
}

// refresh looks up one vehicle and commits the result
func (m *defaultManager) refresh(ctx context.Context, v *vehicles.Vehicle) Outcome {
	registration := v.NormalizedRegistration()
	outcome := Outcome{VehicleID: v.ID, Registration: registration}

	ctx, span := otel.StartSpan(ctx, m.tracer, "sync.refresh",
		trace.WithAttributes(
			otel.AttrVehicleID.String(v.ID.String()),
			otel.AttrRegistration.String(registration),
		),
	)
	defer span.End()

	result, err := m.client.Lookup(ctx, registration)
	if err != nil {
		kind := enquiry.ErrorKindOf(err)
		var lookupErr *enquiry.LookupError
		if errors.As(err, &lookupErr) {
			outcome.Attempts = lookupErr.Attempts
		}
		outcome.Error = kind.String()
		outcome.Message = err.Error()
		span.SetAttributes(otel.AttrOutcome.String(outcome.Error))
		otel.RecordError(span, err)
		m.metrics.RecordLookup(ctx, outcome.Error, outcome.Attempts)
		logLookupFailure(v, registration, kind, outcome.Attempts, err)
		return outcome
	}
	outcome.Attempts = result.Attempts

	record, err := m.writer.Commit(ctx, v.ID, registration, result.Facts)
	if err != nil {
		outcome.Error = ErrorKindPersistence
		outcome.Message = err.Error()
		span.SetAttributes(otel.AttrOutcome.String(outcome.Error))
		otel.RecordError(span, err)
		m.metrics.RecordLookup(ctx, outcome.Error, outcome.Attempts)
		slog.Error("Failed to persist registry facts",
			"vehicle_id", v.ID, "registration", registration, "attempts", outcome.Attempts, "error", err)
		return outcome
	}

	summary := record.Summary()
	outcome.Success = true
	outcome.RoadworthinessStatus = summary.RoadworthinessStatus
	outcome.ExpiryDate = vehicles.FormatDate(summary.RoadworthinessExpiry)
	span.SetAttributes(otel.AttrOutcome.String("success"))
	m.metrics.RecordLookup(ctx, "success", outcome.Attempts)

	slog.Info("Vehicle refreshed",
		"vehicle_id", v.ID,
		"registration", registration,
		"status", outcome.RoadworthinessStatus,
		"expiry", outcome.ExpiryDate,
		"attempts", outcome.Attempts,
	)
	return outcome
}

func logLookupFailure(v *vehicles.Vehicle, registration string, kind enquiry.ErrorKind, attempts int, err error) {
	args := []any{"vehicle_id", v.ID, "registration", registration, "kind", kind.String(), "attempts", attempts}
	switch kind {
	case enquiry.KindNotFound:
		slog.Info("Registration unknown to registry", args...)
	case enquiry.KindAccessDenied:
		// credential problem: every remaining lookup will fail the same way
		slog.Error("Registry rejected credential", append(args, "error", err)...)
	default:
		slog.Warn("Registry lookup failed", append(args, "error", err)...)
	}
}
