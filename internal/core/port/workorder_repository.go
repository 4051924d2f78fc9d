package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

// WorkOrderRepository persists work orders. SaveAll writes a batch in
// one transaction; callers must not mix tenants within a batch.
type WorkOrderRepository interface {
	Save(ctx context.Context, order *domain.WorkOrder) (*domain.WorkOrder, error)
	SaveAll(ctx context.Context, orders []*domain.WorkOrder) ([]*domain.WorkOrder, error)
	GetByID(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.WorkOrder, error)
	Delete(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error
	ListChangedSince(ctx context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.WorkOrder, error)
	MaxUpdatedAt(ctx context.Context, tenantID domain.TenantID) (*time.Time, error)
}
