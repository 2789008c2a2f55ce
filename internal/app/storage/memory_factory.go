package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mydv/vrsync/internal/config"
	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/store/inmemory"
	"github.com/mydv/vrsync/internal/sync/state"
)

// MemoryFactory creates a process-local store, optionally seeded from a
// YAML file. Nothing survives a restart.
type MemoryFactory struct {
	store    *inmemory.Store
	statuses state.StateService
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates a memory storage factory and loads the configured
// seed file, if any
func NewMemoryFactory(cfg *config.Config) (*MemoryFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var opts []inmemory.Option
	if cfg.Storage.SeedFile != "" {
		vs, err := inmemory.LoadSeedFile(cfg.Storage.SeedFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, inmemory.WithVehicles(vs...))
		slog.Info("Loaded vehicle seed file", "path", cfg.Storage.SeedFile, "vehicles", len(vs))
	}

	slog.Warn("Using in-memory storage; registry records are lost on restart")

	return &MemoryFactory{
		store:    inmemory.New(opts...),
		statuses: state.NewMemoryStateService(),
	}, nil
}

// CreateStore implements Factory
func (m *MemoryFactory) CreateStore(_ context.Context) (store.Store, error) {
	return m.store, nil
}

// CreateStateService implements Factory
func (m *MemoryFactory) CreateStateService(_ context.Context) (state.StateService, error) {
	return m.statuses, nil
}

// Cleanup is a no-op for memory storage
func (*MemoryFactory) Cleanup() {}
