package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/mydv/vrsync/internal/config"
	"github.com/mydv/vrsync/internal/db"
	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/store/postgres"
	"github.com/mydv/vrsync/internal/sync/state"
)

// DatabaseFactory creates a PostgreSQL-backed store
type DatabaseFactory struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	store  store.Store
}

var _ Factory = (*DatabaseFactory)(nil)

// NewDatabaseFactory creates a new database-backed storage factory.
// It establishes a connection pool to the configured PostgreSQL database.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*DatabaseFactory, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for database storage type")
	}

	slog.Info("Creating database-backed storage factory")

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	return &DatabaseFactory{
		pool:   pool,
		tracer: tracer,
	}, nil
}

// CreateStore implements Factory
func (d *DatabaseFactory) CreateStore(_ context.Context) (store.Store, error) {
	if d.store != nil {
		return d.store, nil
	}

	opts := []postgres.Option{
		postgres.WithConnectionPool(d.pool),
	}
	if d.tracer != nil {
		opts = append(opts, postgres.WithTracer(d.tracer))
		slog.Debug("Database store tracing enabled")
	}

	st, err := postgres.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}
	d.store = st
	return st, nil
}

// CreateStateService implements Factory
func (d *DatabaseFactory) CreateStateService(_ context.Context) (state.StateService, error) {
	svc, err := state.NewDBStateService(d.pool)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep status service: %w", err)
	}
	return svc, nil
}

// Cleanup closes the database connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}
