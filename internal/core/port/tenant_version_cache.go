package port

import (
	"context"
	"time"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

// TenantVersionCache caches current counters for low-latency pull
// checks. Cached reads are a lower bound; the durable store remains
// authoritative.
type TenantVersionCache interface {
	GetTenantVersion(ctx context.Context, tenantID domain.TenantID) (int64, error)
	SetTenantVersion(ctx context.Context, tenantID domain.TenantID, counter int64, ttl time.Duration) error
	DeleteTenantVersion(ctx context.Context, tenantID domain.TenantID) error
}
