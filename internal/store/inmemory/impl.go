// Package inmemory provides an in-memory implementation of store.Store for
// local runs and tests.
package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mydv/vrsync/internal/store"
	"github.com/mydv/vrsync/internal/vehicles"
)

// Store keeps vehicles and registry records in process memory
type Store struct {
	mu       sync.RWMutex // Protects vehicles, records
	vehicles map[uuid.UUID]vehicles.Vehicle
	records  map[string]vehicles.Record
}

var _ store.Store = (*Store)(nil)

// Option is a functional option for configuring the Store
type Option func(*Store)

// WithVehicles seeds the store with vs
func WithVehicles(vs ...vehicles.Vehicle) Option {
	return func(s *Store) {
		for _, v := range vs {
			s.vehicles[v.ID] = v
		}
	}
}

// New creates an empty in-memory store
func New(opts ...Option) *Store {
	s := &Store{
		vehicles: make(map[uuid.UUID]vehicles.Vehicle),
		records:  make(map[string]vehicles.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddVehicle inserts or replaces a vehicle
func (s *Store) AddVehicle(v vehicles.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
}

// PutRecord inserts or replaces a registry record without touching any
// vehicle
func (s *Store) PutRecord(r vehicles.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Registration = vehicles.NormalizeRegistration(r.Registration)
	s.records[r.Registration] = r
}

// CheckReadiness implements store.Store
func (*Store) CheckReadiness(_ context.Context) error {
	return nil
}

// ListEligibleVehicles implements store.Store
func (s *Store) ListEligibleVehicles(_ context.Context, tenantID string) ([]vehicles.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]vehicles.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if !v.Eligible() {
			continue
		}
		if tenantID != "" && v.TenantID != tenantID {
			continue
		}
		result = append(result, v)
	}

	slices.SortFunc(result, func(a, b vehicles.Vehicle) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return result, nil
}

// GetVehicle implements store.Store
func (s *Store) GetVehicle(_ context.Context, id uuid.UUID) (*vehicles.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrVehicleNotFound, id)
	}
	return &v, nil
}

// GetRecord implements store.Store
func (s *Store) GetRecord(_ context.Context, registration string) (*vehicles.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[vehicles.NormalizeRegistration(registration)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRecordNotFound, registration)
	}
	return &r, nil
}

// ListRecords implements store.Store
func (s *Store) ListRecords(_ context.Context, registrations []string) (map[string]*vehicles.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*vehicles.Record, len(registrations))
	for _, reg := range registrations {
		if r, ok := s.records[reg]; ok {
			result[reg] = &r
		}
	}
	return result, nil
}

// CommitRefresh implements store.Store
func (s *Store) CommitRefresh(_ context.Context, vehicleID uuid.UUID, record *vehicles.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[vehicleID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrVehicleNotFound, vehicleID)
	}

	s.records[record.Registration] = *record
	v.Summary = record.Summary()
	s.vehicles[vehicleID] = v
	return nil
}
