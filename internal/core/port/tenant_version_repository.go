package port

import (
	"context"
	"time"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

// TenantVersionRepository is the durable per-tenant change counter.
//
// Bump must be atomic with respect to concurrent bumps for the same
// tenant: two concurrent calls yield two distinct sequential counters,
// never a lost update. Different tenants are fully independent.
type TenantVersionRepository interface {
	// Get returns the counter state for a tenant, or
	// repository.ErrNotFound if the tenant has never been bumped.
	Get(ctx context.Context, tenantID domain.TenantID) (*domain.TenantVersion, error)

	// Bump atomically increments the tenant's counter, creating the
	// row at 1 on first use, and reports the transition.
	Bump(ctx context.Context, tenantID domain.TenantID, at time.Time) (domain.TenantVersionChange, error)
}
