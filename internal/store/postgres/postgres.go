// Package postgres is the PostgreSQL implementation of store.Store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mydv/vrsync/internal/db/sqlc"
	"github.com/mydv/vrsync/internal/otel"
	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/vehicles"
)

// options holds configuration options for the database store
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database store
type Option func(*options) error

// WithConnectionPool sets the pgx pool. The caller is responsible for
// closing the pool.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// dbStore implements store.Store on PostgreSQL
type dbStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ store.Store = (*dbStore)(nil)

// New creates a database-backed store
func New(opts ...Option) (store.Store, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &dbStore{
		pool:   o.pool,
		tracer: o.tracer,
	}, nil
}

// CheckReadiness implements store.Store
func (s *dbStore) CheckReadiness(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	return nil
}

// ListEligibleVehicles implements store.Store
func (s *dbStore) ListEligibleVehicles(ctx context.Context, tenantID string) ([]vehicles.Vehicle, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "store.ListEligibleVehicles",
		trace.WithAttributes(otel.AttrTenantID.String(tenantID)))
	defer span.End()

	var tenant *string
	if tenantID != "" {
		tenant = &tenantID
	}

	rows, err := sqlc.New(s.pool).ListEligibleVehicles(ctx, tenant)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list eligible vehicles: %w", err)
	}

	result := make([]vehicles.Vehicle, 0, len(rows))
	for _, row := range rows {
		result = append(result, vehicleFromRow(sqlc.GetVehicleRow(row)))
	}
	span.SetAttributes(attribute.Int("result.count", len(result)))
	return result, nil
}

// GetVehicle implements store.Store
func (s *dbStore) GetVehicle(ctx context.Context, id uuid.UUID) (*vehicles.Vehicle, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "store.GetVehicle",
		trace.WithAttributes(otel.AttrVehicleID.String(id.String())))
	defer span.End()

	row, err := sqlc.New(s.pool).GetVehicle(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrVehicleNotFound, id)
		}
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get vehicle %s: %w", id, err)
	}

	v := vehicleFromRow(row)
	return &v, nil
}

// GetRecord implements store.Store
func (s *dbStore) GetRecord(ctx context.Context, registration string) (*vehicles.Record, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "store.GetRecord",
		trace.WithAttributes(otel.AttrRegistration.String(registration)))
	defer span.End()

	row, err := sqlc.New(s.pool).GetRegistryRecord(ctx, registration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrRecordNotFound, registration)
		}
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to get registry record %s: %w", registration, err)
	}
	return recordFromRow(row), nil
}

// ListRecords implements store.Store
func (s *dbStore) ListRecords(ctx context.Context, registrations []string) (map[string]*vehicles.Record, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "store.ListRecords",
		trace.WithAttributes(attribute.Int("registrations.count", len(registrations))))
	defer span.End()

	result := make(map[string]*vehicles.Record, len(registrations))
	if len(registrations) == 0 {
		return result, nil
	}

	rows, err := sqlc.New(s.pool).ListRegistryRecordsByRegistration(ctx, registrations)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list registry records: %w", err)
	}
	for _, row := range rows {
		rec := recordFromRow(sqlc.GetRegistryRecordRow(row))
		result[rec.Registration] = rec
	}
	return result, nil
}

// CommitRefresh implements store.Store. The record upsert and the summary
// update run in one transaction.
func (s *dbStore) CommitRefresh(ctx context.Context, vehicleID uuid.UUID, record *vehicles.Record) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, "store.CommitRefresh",
		trace.WithAttributes(
			otel.AttrVehicleID.String(vehicleID.String()),
			otel.AttrRegistration.String(record.Registration),
		))
	defer span.End()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		err := tx.Rollback(ctx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to rollback transaction", "error", err)
		}
	}()

	querier := sqlc.New(tx)

	if err := querier.UpsertRegistryRecord(ctx, upsertParams(record)); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to upsert registry record %s: %w", record.Registration, err)
	}

	summary := record.Summary()
	affected, err := querier.UpdateVehicleSummary(ctx, sqlc.UpdateVehicleSummaryParams{
		RoadworthinessStatus: nullString(summary.RoadworthinessStatus),
		RoadworthinessExpiry: summary.RoadworthinessExpiry,
		RegistryCheckedAt:    summary.CheckedAt,
		RegistryPayload:      summary.RawPayload,
		ID:                   vehicleID,
	})
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to update summary of vehicle %s: %w", vehicleID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrVehicleNotFound, vehicleID)
	}

	if err := tx.Commit(ctx); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to commit refresh of vehicle %s: %w", vehicleID, err)
	}
	return nil
}
