// Package writer commits successful registry lookups to storage: the
// canonical record for the plate and the summary projection on the vehicle.
package writer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/vehicles"
)

//go:generate mockgen -destination=mocks/mock_sync_writer.go -package=mocks github.com/mydv/vrsync/internal/sync/writer SyncWriter

// SyncWriter persists the result of one successful lookup.
type SyncWriter interface {
	// Commit writes facts as the record for registration and refreshes the
	// summary of vehicleID in one unit. It returns the committed record, or a
	// *PersistError.
	Commit(ctx context.Context, vehicleID uuid.UUID, registration string, facts *vehicles.Facts) (*vehicles.Record, error)
}

// PersistError is a storage failure after a successful lookup
type PersistError struct {
	VehicleID    uuid.UUID
	Registration string
	Err          error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist registry facts for %s (vehicle %s): %v", e.Registration, e.VehicleID, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

type storeWriter struct {
	store store.Store
	clock clock.PassiveClock
}

// Option configures the writer
type Option func(*storeWriter)

// WithClock sets the clock that stamps the check time
func WithClock(c clock.PassiveClock) Option {
	return func(w *storeWriter) {
		w.clock = c
	}
}

// New creates a SyncWriter backed by st
func New(st store.Store, opts ...Option) SyncWriter {
	w := &storeWriter{
		store: st,
		clock: clock.RealClock{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Commit implements SyncWriter
func (w *storeWriter) Commit(
	ctx context.Context, vehicleID uuid.UUID, registration string, facts *vehicles.Facts,
) (*vehicles.Record, error) {
	if facts == nil {
		return nil, &PersistError{VehicleID: vehicleID, Registration: registration, Err: fmt.Errorf("no facts to commit")}
	}

	record := vehicles.NewRecord(registration, facts, w.clock.Now().UTC())
	if record.Registration == "" {
		return nil, &PersistError{VehicleID: vehicleID, Registration: registration, Err: fmt.Errorf("registration is empty")}
	}

	if err := w.store.CommitRefresh(ctx, vehicleID, record); err != nil {
		return nil, &PersistError{VehicleID: vehicleID, Registration: record.Registration, Err: err}
	}
	return record, nil
}
