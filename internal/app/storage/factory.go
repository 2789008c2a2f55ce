// Package storage creates the storage backend selected by configuration and
// owns its resources.
package storage

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/mydv/vrsync/internal/config"
	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/sync/state"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates the store and sweep status service used by every component of the pipeline and
// manages the lifecycle of its resources (e.g., database connections).
type Factory interface {
	// CreateStore returns the store. Repeated calls return the same store.
	CreateStore(ctx context.Context) (store.Store, error)

	// CreateStateService returns the service that records sweep statuses,
	// backed by the same storage as the store.
	CreateStateService(ctx context.Context) (state.StateService, error)

	// Cleanup releases any resources held by this factory.
	// For database factories, this closes the connection pool.
	// For memory factories, this is a no-op.
	Cleanup()
}

// FactoryOption configures a Factory
type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	tracer trace.Tracer
}

// WithTracer sets the OpenTelemetry tracer for the created store.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) FactoryOption {
	return func(o *factoryOptions) {
		o.tracer = tracer
	}
}

// NewStorageFactory creates a storage factory based on the configured storage type.
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...FactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	o := &factoryOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch cfg.Storage.GetType() {
	case config.StorageTypeDatabase:
		f, err := NewDatabaseFactory(ctx, cfg, o.tracer)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.StorageTypeMemory:
		f, err := NewMemoryFactory(cfg)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.GetType())
	}
}
