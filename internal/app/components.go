package app

import (
	"github.com/mydv/vrsync/internal/service"
	"github.com/mydv/vrsync/internal/store"
	pkgsync "github.com/mydv/vrsync/internal/sync"
	"github.com/mydv/vrsync/internal/sync/coordinator"
	"github.com/mydv/vrsync/internal/sync/state"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SweepCoordinator runs scheduled sweeps and guards manual triggers
	SweepCoordinator coordinator.Coordinator

	// SweepManager runs sweeps and single-vehicle refreshes
	SweepManager pkgsync.Manager

	// SyncService is the facade used by the HTTP API and the CLI
	SyncService service.SyncService

	// Store is the storage shared by every component
	Store store.Store

	// SweepStatuses records the progress of every sweep
	SweepStatuses state.StateService
}
