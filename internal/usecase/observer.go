package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/tenantctx"
)

// MutationObserver bumps the owning tenant's version counter after a
// write or delete against tenant-owned data has committed. Write-path
// services call it explicitly once the repository returns, so the
// counter can never advance ahead of the data it announces.
//
// The observer never fails the triggering mutation: every resolution
// or bump problem is logged and the bump is skipped. Skipped bumps
// surface to clients as eventual-consistency drift recovered by the
// next attributable mutation or a periodic full resync.
type MutationObserver struct {
	versions *TenantVersionService
	logger   *zap.Logger
	metrics  TenantVersionMetrics
}

// NewMutationObserver constructs the observer.
func NewMutationObserver(versions *TenantVersionService) *MutationObserver {
	return &MutationObserver{
		versions: versions,
		logger:   zap.NewNop(),
	}
}

// WithLogger attaches a structured logger to the observer.
func (o *MutationObserver) WithLogger(logger *zap.Logger) *MutationObserver {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// WithMetrics wires telemetry for skipped-bump tracking.
func (o *MutationObserver) WithMetrics(metrics TenantVersionMetrics) *MutationObserver {
	if metrics != nil {
		o.metrics = metrics
	}
	return o
}

// AfterSave records a successful write of the given persisted value
// (entity, batch, or nil-able pointer). Structural resolution is tried
// first; the request context is the fallback.
func (o *MutationObserver) AfterSave(ctx context.Context, result any) {
	tenantID, ok := domain.ResolveTenant(result)
	if !ok {
		tenantID, ok = tenantctx.From(ctx)
	}
	if !ok {
		o.skip("save", domain.KindOf(result))
		return
	}
	o.bump(ctx, tenantID, "save")
}

// AfterDelete records a successful delete. Identity-only deletes carry
// no entity payload, so the tenant comes from the request context
// alone; with no context tenant the bump is skipped.
func (o *MutationObserver) AfterDelete(ctx context.Context) {
	tenantID, ok := tenantctx.From(ctx)
	if !ok {
		o.skip("delete", domain.KindUnknown)
		return
	}
	o.bump(ctx, tenantID, "delete")
}

func (o *MutationObserver) bump(ctx context.Context, tenantID domain.TenantID, source string) {
	if _, err := o.versions.Bump(ctx, tenantID, source); err != nil {
		o.logger.Warn("tenant version bump failed",
			zap.Int64("tenant_id", int64(tenantID)),
			zap.String("source", source),
			zap.Error(err),
		)
		if o.metrics != nil {
			o.metrics.IncSkippedBump()
		}
	}
}

func (o *MutationObserver) skip(source string, kind domain.EntityKind) {
	o.logger.Debug("tenant unresolved, version bump skipped",
		zap.String("source", source),
		zap.String("entity_kind", string(kind)),
	)
	if o.metrics != nil {
		o.metrics.IncSkippedBump()
	}
}
