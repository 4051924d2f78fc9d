package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

// PartTypeRepository persists the per-workshop parts catalog.
type PartTypeRepository interface {
	Save(ctx context.Context, partType *domain.PartType) (*domain.PartType, error)
	Delete(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error
	ListChangedSince(ctx context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.PartType, error)
	MaxUpdatedAt(ctx context.Context, tenantID domain.TenantID) (*time.Time, error)
}
