// Package memory provides in-process repository implementations for
// tests and single-node development. Counters held here do not survive
// a restart; deployments using this store accept a one-time full
// resync after the process comes back.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/repository"
)

// TenantVersionStore keeps per-tenant counters in a mutex-guarded map.
type TenantVersionStore struct {
	mu       sync.Mutex
	versions map[domain.TenantID]domain.TenantVersion
}

// NewTenantVersionStore constructs an empty in-memory counter store.
func NewTenantVersionStore() *TenantVersionStore {
	return &TenantVersionStore{versions: make(map[domain.TenantID]domain.TenantVersion)}
}

var _ port.TenantVersionRepository = (*TenantVersionStore)(nil)

// Get returns the counter state for a tenant.
func (s *TenantVersionStore) Get(_ context.Context, tenantID domain.TenantID) (*domain.TenantVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version, ok := s.versions[tenantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := version
	return &copy, nil
}

// Bump atomically increments the tenant's counter.
func (s *TenantVersionStore) Bump(_ context.Context, tenantID domain.TenantID, at time.Time) (domain.TenantVersionChange, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var change domain.TenantVersionChange
	if previous, ok := s.versions[tenantID]; ok {
		copy := previous
		change.Previous = &copy
	}

	next := domain.TenantVersion{
		TenantID:     tenantID,
		Counter:      1,
		LastBumpedAt: at.UTC(),
	}
	if change.Previous != nil {
		next.Counter = change.Previous.Counter + 1
	}

	s.versions[tenantID] = next
	change.Current = next
	return change, nil
}
