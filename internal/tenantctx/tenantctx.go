// Package tenantctx carries the current tenant through the request's
// context.Context. It is the fallback source of tenant identity for
// mutations that cannot be attributed structurally, such as
// delete-by-id where no entity is loaded.
package tenantctx

import (
	"context"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

type tenantKey struct{}

// With returns a context carrying the given tenant.
func With(ctx context.Context, tenantID domain.TenantID) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// From extracts the current tenant, reporting false when none was set.
func From(ctx context.Context) (domain.TenantID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(tenantKey{}).(domain.TenantID)
	return id, ok
}
