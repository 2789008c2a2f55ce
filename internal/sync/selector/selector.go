// Package selector picks the tracked vehicles whose registry facts are due
// for a refresh.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/mydv/vrsync/internal/filtering"
	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/vehicles"
)

// DefaultThreshold is the age after which a registry record is stale
const DefaultThreshold = 7 * 24 * time.Hour

// Options scopes one selection
type Options struct {
	// TenantID limits selection to one tenant; empty means all tenants
	TenantID string
	// ForceAll selects every eligible vehicle regardless of staleness
	ForceAll bool
}

//go:generate mockgen -destination=mocks/mock_selector.go -package=mocks github.com/mydv/vrsync/internal/sync/selector Selector

// Selector returns the vehicles needing a refresh, oldest-tracked first.
// An empty result is not an error.
type Selector interface {
	Select(ctx context.Context, opts Options) ([]vehicles.Vehicle, error)
}

type stalenessSelector struct {
	store     store.Store
	clock     clock.PassiveClock
	threshold time.Duration
	tenants   filtering.TenantFilter
}

// Option configures the selector
type Option func(*stalenessSelector)

// WithClock sets the clock used as "now"
func WithClock(c clock.PassiveClock) Option {
	return func(s *stalenessSelector) {
		s.clock = c
	}
}

// WithThreshold sets the staleness threshold
func WithThreshold(threshold time.Duration) Option {
	return func(s *stalenessSelector) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithTenantFilter limits all-tenant selections to the tenants f includes.
// Selections for one named tenant ignore it.
func WithTenantFilter(f filtering.TenantFilter) Option {
	return func(s *stalenessSelector) {
		s.tenants = f
	}
}

// New creates a selector reading from st
func New(st store.Store, opts ...Option) Selector {
	s := &stalenessSelector{
		store:     st,
		clock:     clock.RealClock{},
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select implements Selector
func (s *stalenessSelector) Select(ctx context.Context, opts Options) ([]vehicles.Vehicle, error) {
	eligible, err := s.store.ListEligibleVehicles(ctx, opts.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible vehicles: %w", err)
	}

	// The store already filters, but the invariant is ours to keep.
	candidates := make([]vehicles.Vehicle, 0, len(eligible))
	included := make(map[string]bool)
	for _, v := range eligible {
		if !v.Eligible() {
			continue
		}
		if opts.TenantID == "" && !s.includesTenant(v.TenantID, included) {
			continue
		}
		candidates = append(candidates, v)
	}

	if opts.ForceAll || len(candidates) == 0 {
		return candidates, nil
	}

	records, err := s.store.ListRecords(ctx, store.Registrations(candidates))
	if err != nil {
		return nil, fmt.Errorf("failed to load registry records: %w", err)
	}

	now := s.clock.Now()
	selected := make([]vehicles.Vehicle, 0, len(candidates))
	for _, v := range candidates {
		var checkedAt *time.Time
		if rec, ok := records[v.NormalizedRegistration()]; ok {
			checkedAt = rec.CheckedAt
		}
		if vehicles.IsStale(checkedAt, now, s.threshold) {
			selected = append(selected, v)
		}
	}

	slog.Debug("Selected stale vehicles",
		"tenant_id", opts.TenantID,
		"eligible", len(candidates),
		"stale", len(selected),
		"threshold", s.threshold)

	return selected, nil
}

// includesTenant consults the tenant filter once per tenant
func (s *stalenessSelector) includesTenant(tenantID string, decided map[string]bool) bool {
	if s.tenants == nil {
		return true
	}
	if ok, seen := decided[tenantID]; seen {
		return ok
	}
	ok, reason := s.tenants.ShouldInclude(tenantID)
	if !ok {
		slog.Debug("Tenant skipped by sweep filter", "tenant_id", tenantID, "reason", reason)
	}
	decided[tenantID] = ok
	return ok
}
