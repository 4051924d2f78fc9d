package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
)

// ErrPartTypeRequired indicates the part type payload is missing.
var ErrPartTypeRequired = errors.New("part type is required")

// PartTypeService owns the parts catalog write path.
type PartTypeService struct {
	repo     port.PartTypeRepository
	observer *MutationObserver
	logger   *zap.Logger
}

// NewPartTypeService constructs the part type service.
func NewPartTypeService(repo port.PartTypeRepository, observer *MutationObserver) *PartTypeService {
	return &PartTypeService{repo: repo, observer: observer, logger: zap.NewNop()}
}

// WithLogger attaches a structured logger to the service.
func (s *PartTypeService) WithLogger(logger *zap.Logger) *PartTypeService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Save persists a part type and bumps the owning tenant's version.
func (s *PartTypeService) Save(ctx context.Context, partType *domain.PartType) (*domain.PartType, error) {
	if partType == nil {
		return nil, ErrPartTypeRequired
	}

	saved, err := s.repo.Save(ctx, partType)
	if err != nil {
		return nil, err
	}

	s.observer.AfterSave(ctx, saved)
	return saved, nil
}

// Delete removes a part type by identifier; tenant attribution for the
// bump comes from the request context.
func (s *PartTypeService) Delete(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	if tenantID <= 0 {
		return ErrTenantRequired
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.observer.AfterDelete(ctx)
	return nil
}
