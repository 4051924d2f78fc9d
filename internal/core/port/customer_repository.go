package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

// CustomerRepository persists customers. Deactivate is the soft-delete
// path: the row stays visible to incremental pulls as an update.
type CustomerRepository interface {
	Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.Customer, error)
	Deactivate(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error
	ListChangedSince(ctx context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.Customer, error)
	MaxUpdatedAt(ctx context.Context, tenantID domain.TenantID) (*time.Time, error)
}
