// Package store defines the persistence boundary of the sync pipeline: the
// tracked vehicle set (read) and the canonical registry records plus the
// vehicle summary projection (written together).
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mydv/vrsync/internal/vehicles"
)

var (
	// ErrVehicleNotFound is returned when no vehicle has the requested id
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrRecordNotFound is returned when no registry record exists for a plate
	ErrRecordNotFound = errors.New("registry record not found")
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/mydv/vrsync/internal/store Store

// Store is the storage used by the selector, the writer and the statistics
// aggregator.
type Store interface {
	// CheckReadiness reports whether the backing storage is reachable
	CheckReadiness(ctx context.Context) error

	// ListEligibleVehicles returns active vehicles with a registration,
	// ordered by creation time then id. An empty tenantID matches all tenants.
	ListEligibleVehicles(ctx context.Context, tenantID string) ([]vehicles.Vehicle, error)

	// GetVehicle returns a single vehicle regardless of eligibility
	GetVehicle(ctx context.Context, id uuid.UUID) (*vehicles.Vehicle, error)

	// GetRecord returns the registry record for a normalised plate
	GetRecord(ctx context.Context, registration string) (*vehicles.Record, error)

	// ListRecords returns the records for the given normalised plates, keyed
	// by plate. Plates without a record are absent from the map.
	ListRecords(ctx context.Context, registrations []string) (map[string]*vehicles.Record, error)

	// CommitRefresh upserts record and writes its summary onto the vehicle as
	// one unit. ErrVehicleNotFound is returned, and nothing is written, when
	// the vehicle does not exist.
	CommitRefresh(ctx context.Context, vehicleID uuid.UUID, record *vehicles.Record) error
}

// Registrations returns the distinct normalised plates of vs in input order.
func Registrations(vs []vehicles.Vehicle) []string {
	seen := make(map[string]struct{}, len(vs))
	out := make([]string, 0, len(vs))
	for i := range vs {
		reg := vs[i].NormalizedRegistration()
		if reg == "" {
			continue
		}
		if _, ok := seen[reg]; ok {
			continue
		}
		seen[reg] = struct{}{}
		out = append(out, reg)
	}
	return out
}
