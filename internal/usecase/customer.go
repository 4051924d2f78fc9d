package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
)

// ErrCustomerRequired indicates the customer payload is missing.
var ErrCustomerRequired = errors.New("customer is required")

// CustomerService owns the customer write path. Every mutation notifies
// the observer after the repository confirms the write.
type CustomerService struct {
	repo     port.CustomerRepository
	observer *MutationObserver
	logger   *zap.Logger
}

// NewCustomerService constructs the customer service.
func NewCustomerService(repo port.CustomerRepository, observer *MutationObserver) *CustomerService {
	return &CustomerService{repo: repo, observer: observer, logger: zap.NewNop()}
}

// WithLogger attaches a structured logger to the service.
func (s *CustomerService) WithLogger(logger *zap.Logger) *CustomerService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Save persists a customer and bumps the owning tenant's version.
func (s *CustomerService) Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, ErrCustomerRequired
	}

	saved, err := s.repo.Save(ctx, customer)
	if err != nil {
		return nil, err
	}

	s.observer.AfterSave(ctx, saved)
	return saved, nil
}

// Get retrieves a customer scoped to the tenant.
func (s *CustomerService) Get(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.Customer, error) {
	if tenantID <= 0 {
		return nil, ErrTenantRequired
	}
	return s.repo.GetByID(ctx, tenantID, id)
}

// Deactivate soft-deletes a customer. No entity is loaded, so the
// observer attributes the bump from the request context.
func (s *CustomerService) Deactivate(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	if tenantID <= 0 {
		return ErrTenantRequired
	}

	if err := s.repo.Deactivate(ctx, tenantID, id); err != nil {
		return err
	}

	s.observer.AfterDelete(ctx)
	return nil
}
