package state

import (
	"context"
	"sync"
)

type memoryStateService struct {
	mu       sync.Mutex
	statuses map[string]*SweepStatus
}

// NewMemoryStateService creates a StateService that keeps statuses in memory
func NewMemoryStateService() StateService {
	return &memoryStateService{
		statuses: make(map[string]*SweepStatus),
	}
}

func (m *memoryStateService) ListSweepStatuses(_ context.Context) (map[string]*SweepStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string]*SweepStatus, len(m.statuses))
	for scope, s := range m.statuses {
		result[scope] = s.clone()
	}
	return result, nil
}

func (m *memoryStateService) GetSweepStatus(_ context.Context, scope string) (*SweepStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.statuses[scope]
	if !ok {
		return nil, ErrStatusNotFound
	}
	return s.clone(), nil
}

func (m *memoryStateService) UpdateStatusAtomically(
	_ context.Context,
	scope string,
	fn func(*SweepStatus) bool,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := &SweepStatus{Phase: SweepPhasePending}
	if s, ok := m.statuses[scope]; ok {
		current = s.clone()
	}

	if !fn(current) {
		return false, nil
	}
	m.statuses[scope] = current
	return true, nil
}
