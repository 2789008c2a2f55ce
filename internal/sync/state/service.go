// Package state keeps track of the sweeps the server has run, per scope.
package state

import (
	"context"
	"errors"
)

// ErrStatusNotFound is returned for a scope that has never been swept
var ErrStatusNotFound = errors.New("sweep status not found")

// StateService reads and updates sweep statuses.
//
//go:generate mockgen -destination=mocks/mock_state_service.go -package=mocks github.com/mydv/vrsync/internal/sync/state StateService
type StateService interface {
	// ListSweepStatuses returns the status of every scope, keyed by scope
	ListSweepStatuses(ctx context.Context) (map[string]*SweepStatus, error)

	// GetSweepStatus returns the status of scope, or ErrStatusNotFound
	GetSweepStatus(ctx context.Context, scope string) (*SweepStatus, error)

	// UpdateStatusAtomically fetches the status of scope, starting from a
	// pending status when there is none, applies fn and stores the result if
	// fn reports a change, all as a single atomic action. It returns whether
	// the status was stored.
	UpdateStatusAtomically(ctx context.Context, scope string, fn func(*SweepStatus) bool) (bool, error)
}
