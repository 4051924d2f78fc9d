package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
)

// ErrWorkOrderRequired indicates the work order payload is missing.
var ErrWorkOrderRequired = errors.New("work order is required")

// WorkOrderService owns the work order write path.
type WorkOrderService struct {
	repo     port.WorkOrderRepository
	observer *MutationObserver
	logger   *zap.Logger
}

// NewWorkOrderService constructs the work order service.
func NewWorkOrderService(repo port.WorkOrderRepository, observer *MutationObserver) *WorkOrderService {
	return &WorkOrderService{repo: repo, observer: observer, logger: zap.NewNop()}
}

// WithLogger attaches a structured logger to the service.
func (s *WorkOrderService) WithLogger(logger *zap.Logger) *WorkOrderService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Save persists a work order and bumps the owning tenant's version.
func (s *WorkOrderService) Save(ctx context.Context, order *domain.WorkOrder) (*domain.WorkOrder, error) {
	if order == nil {
		return nil, ErrWorkOrderRequired
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}

	s.observer.AfterSave(ctx, saved)
	return saved, nil
}

// SaveAll persists a batch of work orders in one transaction and bumps
// the version once for the whole batch. Batches are assumed to belong
// to a single tenant; callers must not mix tenants.
func (s *WorkOrderService) SaveAll(ctx context.Context, orders []*domain.WorkOrder) ([]*domain.WorkOrder, error) {
	if len(orders) == 0 {
		return nil, nil
	}

	saved, err := s.repo.SaveAll(ctx, orders)
	if err != nil {
		return nil, err
	}

	s.observer.AfterSave(ctx, saved)
	return saved, nil
}

// Get retrieves a work order scoped to the tenant.
func (s *WorkOrderService) Get(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.WorkOrder, error) {
	if tenantID <= 0 {
		return nil, ErrTenantRequired
	}
	return s.repo.GetByID(ctx, tenantID, id)
}

// Delete removes a work order by identifier. The observer attributes
// the bump from the request context since no entity is loaded.
func (s *WorkOrderService) Delete(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	if tenantID <= 0 {
		return ErrTenantRequired
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.observer.AfterDelete(ctx)
	return nil
}
