// Package service is the facade the HTTP API and the CLI use to drive the
// registry sync pipeline.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mydv/vrsync/internal/stats"
	"github.com/mydv/vrsync/internal/store"
	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/internal/sync/coordinator"
	"github.com/mydv/vrsync/internal/sync/state"
	"github.com/mydv/vrsync/internal/validators"
)

var (
	// ErrSweepInProgress is returned when a different sweep is already running
	ErrSweepInProgress = coordinator.ErrSweepInProgress
	// ErrInvalidBatchSize is returned for a negative batch size
	ErrInvalidBatchSize = errors.New("batch size must not be negative")
	// ErrInvalidTenantID is returned for a malformed tenant ID
	ErrInvalidTenantID = errors.New("invalid tenant ID")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go SyncService

// SyncService defines the operations exposed by vrsync
type SyncService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// TriggerSweep runs a sweep, or joins an identical running one
	TriggerSweep(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error)

	// RunSweep runs a sweep bound to ctx. Cancelling ctx stops it at the next
	// vehicle or group and the partial report is returned.
	RunSweep(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error)

	// RefreshVehicle refreshes one vehicle outside of any sweep
	RefreshVehicle(ctx context.Context, vehicleID uuid.UUID) pkgsync.RefreshResult

	// GetStats returns the freshness statistics of one tenant, or of all
	// tenants when tenantID is empty
	GetStats(ctx context.Context, tenantID string) (*stats.Stats, error)

	// GetSweepStatuses returns the status of the last sweep of every scope
	// that has been swept, keyed by tenant ID or "*" for all tenants
	GetSweepStatuses(ctx context.Context) (map[string]*state.SweepStatus, error)
}

type syncService struct {
	store       store.Store
	coordinator coordinator.Coordinator
	manager     pkgsync.Manager
	aggregator  stats.Aggregator
	statuses    state.StateService
}

// New creates a SyncService
func New(
	st store.Store,
	coord coordinator.Coordinator,
	manager pkgsync.Manager,
	aggregator stats.Aggregator,
	statuses state.StateService,
) SyncService {
	return &syncService{
		store:       st,
		coordinator: coord,
		manager:     manager,
		aggregator:  aggregator,
		statuses:    statuses,
	}
}

// CheckReadiness implements SyncService
func (s *syncService) CheckReadiness(ctx context.Context) error {
	if err := s.store.CheckReadiness(ctx); err != nil {
		return fmt.Errorf("storage not ready: %w", err)
	}
	return nil
}

// TriggerSweep implements SyncService
func (s *syncService) TriggerSweep(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
	opts, err := normalizeSweepOptions(opts)
	if err != nil {
		return nil, err
	}
	return s.coordinator.Trigger(ctx, opts)
}

// RunSweep implements SyncService
func (s *syncService) RunSweep(ctx context.Context, opts pkgsync.SweepOptions) (*pkgsync.SweepReport, error) {
	opts, err := normalizeSweepOptions(opts)
	if err != nil {
		return nil, err
	}
	return s.coordinator.Run(ctx, opts)
}

func normalizeSweepOptions(opts pkgsync.SweepOptions) (pkgsync.SweepOptions, error) {
	if opts.BatchSize < 0 {
		return opts, ErrInvalidBatchSize
	}
	tenantID, err := validators.ValidateOptionalTenantID(opts.TenantID)
	if err != nil {
		return opts, fmt.Errorf("%w: %w", ErrInvalidTenantID, err)
	}
	opts.TenantID = tenantID
	return opts, nil
}

// RefreshVehicle implements SyncService
func (s *syncService) RefreshVehicle(ctx context.Context, vehicleID uuid.UUID) pkgsync.RefreshResult {
	return s.manager.RefreshVehicle(ctx, vehicleID)
}

// GetStats implements SyncService
func (s *syncService) GetStats(ctx context.Context, tenantID string) (*stats.Stats, error) {
	tenantID, err := validators.ValidateOptionalTenantID(tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTenantID, err)
	}
	return s.aggregator.Stats(ctx, tenantID)
}

// GetSweepStatuses implements SyncService
func (s *syncService) GetSweepStatuses(ctx context.Context) (map[string]*state.SweepStatus, error) {
	statuses, err := s.statuses.ListSweepStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep statuses: %w", err)
	}

	// scopes that were only ever initialized have nothing to report
	for scope, st := range statuses {
		if st.Phase == state.SweepPhasePending {
			delete(statuses, scope)
		}
	}
	return statuses, nil
}
