package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
)

// PullResult is the outcome of an incremental pull.
type PullResult struct {
	TenantVersion int64
	Cursor        *time.Time
	NoChanges     bool
	Customers     []*domain.Customer
	WorkOrders    []*domain.WorkOrder
	PartTypes     []*domain.PartType
}

// SyncStatus is the lightweight change probe used by clients to decide
// whether a pull is worth making.
type SyncStatus struct {
	ServerTime          time.Time
	TenantVersion       int64
	CustomersUpdatedAt  *time.Time
	WorkOrdersUpdatedAt *time.Time
	PartTypesUpdatedAt  *time.Time
}

// SyncService exposes the incremental sync surface to clients.
type SyncService struct {
	versions   *TenantVersionService
	customers  port.CustomerRepository
	workOrders port.WorkOrderRepository
	partTypes  port.PartTypeRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewSyncService constructs the sync service.
func NewSyncService(versions *TenantVersionService, customers port.CustomerRepository, workOrders port.WorkOrderRepository, partTypes port.PartTypeRepository) *SyncService {
	return &SyncService{
		versions:   versions,
		customers:  customers,
		workOrders: workOrders,
		partTypes:  partTypes,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
}

// WithLogger attaches a structured logger to the service.
func (s *SyncService) WithLogger(logger *zap.Logger) *SyncService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *SyncService) WithNow(now func() time.Time) *SyncService {
	if now != nil {
		s.now = now
	}
	return s
}

// Pull compares the client's last acknowledged counter against the
// tenant's current one. When the client is already up to date no data
// is queried; otherwise the client watermark is normalized and every
// collection changed at or after the cursor is returned together with
// the counter to acknowledge.
//
// A client that has never synced (lastVersion 0) always receives the
// full window regardless of counter state.
func (s *SyncService) Pull(ctx context.Context, tenantID domain.TenantID, since *time.Time, lastVersion int64) (*PullResult, error) {
	if tenantID <= 0 {
		return nil, ErrTenantRequired
	}

	current, err := s.versions.Current(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("read tenant version: %w", err)
	}

	if lastVersion > 0 && lastVersion >= current {
		return &PullResult{TenantVersion: current, NoChanges: true}, nil
	}

	cursor := domain.NormalizeWatermark(since)

	customers, err := s.customers.ListChangedSince(ctx, tenantID, cursor)
	if err != nil {
		return nil, fmt.Errorf("list changed customers: %w", err)
	}
	workOrders, err := s.workOrders.ListChangedSince(ctx, tenantID, cursor)
	if err != nil {
		return nil, fmt.Errorf("list changed work orders: %w", err)
	}
	partTypes, err := s.partTypes.ListChangedSince(ctx, tenantID, cursor)
	if err != nil {
		return nil, fmt.Errorf("list changed part types: %w", err)
	}

	s.logger.Debug("incremental pull served",
		zap.Int64("tenant_id", int64(tenantID)),
		zap.Int64("tenant_version", current),
		zap.Int("customers", len(customers)),
		zap.Int("work_orders", len(workOrders)),
		zap.Int("part_types", len(partTypes)),
	)

	return &PullResult{
		TenantVersion: current,
		Cursor:        cursor,
		Customers:     customers,
		WorkOrders:    workOrders,
		PartTypes:     partTypes,
	}, nil
}

// Status reports the server time, per-collection high-water marks and
// the current counter without transferring any entity data.
func (s *SyncService) Status(ctx context.Context, tenantID domain.TenantID) (*SyncStatus, error) {
	if tenantID <= 0 {
		return nil, ErrTenantRequired
	}

	current, err := s.versions.Current(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("read tenant version: %w", err)
	}

	customersMax, err := s.customers.MaxUpdatedAt(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("max customer updated_at: %w", err)
	}
	workOrdersMax, err := s.workOrders.MaxUpdatedAt(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("max work order updated_at: %w", err)
	}
	partTypesMax, err := s.partTypes.MaxUpdatedAt(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("max part type updated_at: %w", err)
	}

	return &SyncStatus{
		ServerTime:          s.now().UTC(),
		TenantVersion:       current,
		CustomersUpdatedAt:  customersMax,
		WorkOrdersUpdatedAt: workOrdersMax,
		PartTypesUpdatedAt:  partTypesMax,
	}, nil
}
