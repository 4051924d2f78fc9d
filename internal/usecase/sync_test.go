package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/repository"
	"github.com/oficinahub/workshop-sync/internal/tenantctx"
)

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*domain.Customer
	listErr   error
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*domain.Customer)}
}

func (s *stubCustomerRepo) Save(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *customer
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}
	saved.UpdatedAt = time.Now().UTC()
	s.customers[saved.ID] = &saved
	return &saved, nil
}

func (s *stubCustomerRepo) GetByID(_ context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok || customer.Workshop == nil || customer.Workshop.ID != tenantID {
		return nil, repository.ErrNotFound
	}
	copy := *customer
	return &copy, nil
}

func (s *stubCustomerRepo) Deactivate(_ context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok || customer.Workshop == nil || customer.Workshop.ID != tenantID {
		return repository.ErrNotFound
	}
	customer.Active = false
	customer.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *stubCustomerRepo) ListChangedSince(_ context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.Customer, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Customer
	for _, customer := range s.customers {
		if customer.Workshop == nil || customer.Workshop.ID != tenantID {
			continue
		}
		if since != nil && customer.UpdatedAt.Before(*since) {
			continue
		}
		copy := *customer
		out = append(out, &copy)
	}
	return out, nil
}

func (s *stubCustomerRepo) MaxUpdatedAt(_ context.Context, tenantID domain.TenantID) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var max *time.Time
	for _, customer := range s.customers {
		if customer.Workshop == nil || customer.Workshop.ID != tenantID {
			continue
		}
		if max == nil || customer.UpdatedAt.After(*max) {
			ts := customer.UpdatedAt
			max = &ts
		}
	}
	return max, nil
}

type stubWorkOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.WorkOrder
}

func newStubWorkOrderRepo() *stubWorkOrderRepo {
	return &stubWorkOrderRepo{orders: make(map[uuid.UUID]*domain.WorkOrder)}
}

func (s *stubWorkOrderRepo) Save(_ context.Context, order *domain.WorkOrder) (*domain.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *order
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}
	saved.UpdatedAt = time.Now().UTC()
	s.orders[saved.ID] = &saved
	return &saved, nil
}

func (s *stubWorkOrderRepo) SaveAll(ctx context.Context, orders []*domain.WorkOrder) ([]*domain.WorkOrder, error) {
	out := make([]*domain.WorkOrder, 0, len(orders))
	for _, order := range orders {
		saved, err := s.Save(ctx, order)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (s *stubWorkOrderRepo) GetByID(_ context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.Workshop == nil || order.Workshop.ID != tenantID {
		return nil, repository.ErrNotFound
	}
	copy := *order
	return &copy, nil
}

func (s *stubWorkOrderRepo) Delete(_ context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.Workshop == nil || order.Workshop.ID != tenantID {
		return repository.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *stubWorkOrderRepo) ListChangedSince(_ context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.WorkOrder
	for _, order := range s.orders {
		if order.Workshop == nil || order.Workshop.ID != tenantID {
			continue
		}
		if since != nil && order.UpdatedAt.Before(*since) {
			continue
		}
		copy := *order
		out = append(out, &copy)
	}
	return out, nil
}

func (s *stubWorkOrderRepo) MaxUpdatedAt(_ context.Context, tenantID domain.TenantID) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var max *time.Time
	for _, order := range s.orders {
		if order.Workshop == nil || order.Workshop.ID != tenantID {
			continue
		}
		if max == nil || order.UpdatedAt.After(*max) {
			ts := order.UpdatedAt
			max = &ts
		}
	}
	return max, nil
}

type stubPartTypeRepo struct {
	mu    sync.Mutex
	types map[uuid.UUID]*domain.PartType
}

func newStubPartTypeRepo() *stubPartTypeRepo {
	return &stubPartTypeRepo{types: make(map[uuid.UUID]*domain.PartType)}
}

func (s *stubPartTypeRepo) Save(_ context.Context, partType *domain.PartType) (*domain.PartType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *partType
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}
	saved.UpdatedAt = time.Now().UTC()
	s.types[saved.ID] = &saved
	return &saved, nil
}

func (s *stubPartTypeRepo) Delete(_ context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	partType, ok := s.types[id]
	if !ok || partType.Workshop == nil || partType.Workshop.ID != tenantID {
		return repository.ErrNotFound
	}
	delete(s.types, id)
	return nil
}

func (s *stubPartTypeRepo) ListChangedSince(_ context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.PartType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.PartType
	for _, partType := range s.types {
		if partType.Workshop == nil || partType.Workshop.ID != tenantID {
			continue
		}
		if since != nil && partType.UpdatedAt.Before(*since) {
			continue
		}
		copy := *partType
		out = append(out, &copy)
	}
	return out, nil
}

func (s *stubPartTypeRepo) MaxUpdatedAt(_ context.Context, tenantID domain.TenantID) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var max *time.Time
	for _, partType := range s.types {
		if partType.Workshop == nil || partType.Workshop.ID != tenantID {
			continue
		}
		if max == nil || partType.UpdatedAt.After(*max) {
			ts := partType.UpdatedAt
			max = &ts
		}
	}
	return max, nil
}

type syncFixture struct {
	versions   *TenantVersionService
	observer   *MutationObserver
	customers  *stubCustomerRepo
	workOrders *stubWorkOrderRepo
	partTypes  *stubPartTypeRepo
	sync       *SyncService
	customer   *CustomerService
	workOrder  *WorkOrderService
	partType   *PartTypeService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	log := zaptest.NewLogger(t)
	versions := NewTenantVersionService(newStubTenantVersionRepo(), newStubTenantVersionCache(), &stubEventPublisher{}, TenantVersionOptions{}).WithLogger(log)
	observer := NewMutationObserver(versions).WithLogger(log)

	customers := newStubCustomerRepo()
	workOrders := newStubWorkOrderRepo()
	partTypes := newStubPartTypeRepo()

	return &syncFixture{
		versions:   versions,
		observer:   observer,
		customers:  customers,
		workOrders: workOrders,
		partTypes:  partTypes,
		sync:       NewSyncService(versions, customers, workOrders, partTypes).WithLogger(log),
		customer:   NewCustomerService(customers, observer).WithLogger(log),
		workOrder:  NewWorkOrderService(workOrders, observer).WithLogger(log),
		partType:   NewPartTypeService(partTypes, observer).WithLogger(log),
	}
}

func TestPullRejectsInvalidTenant(t *testing.T) {
	fx := newSyncFixture(t)

	if _, err := fx.sync.Pull(context.Background(), 0, nil, 0); !errors.Is(err, ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}

func TestPullNeverSyncedClientGetsFullWindow(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	if _, err := fx.customer.Save(ctx, &domain.Customer{Workshop: &domain.Workshop{ID: 1}, Name: "Ana", Active: true}); err != nil {
		t.Fatalf("save customer: %v", err)
	}

	result, err := fx.sync.Pull(ctx, 1, nil, 0)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.NoChanges {
		t.Fatal("never-synced client must receive data")
	}
	if result.TenantVersion != 1 {
		t.Fatalf("expected tenant version 1, got %d", result.TenantVersion)
	}
	if len(result.Customers) != 1 {
		t.Fatalf("expected one customer, got %d", len(result.Customers))
	}
	if result.Cursor != nil {
		t.Fatalf("expected nil cursor on full sync, got %v", result.Cursor)
	}
}

func TestPullUpToDateClientShortCircuits(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	if _, err := fx.customer.Save(ctx, &domain.Customer{Workshop: &domain.Workshop{ID: 1}, Name: "Ana", Active: true}); err != nil {
		t.Fatalf("save customer: %v", err)
	}

	fx.customers.listErr = errors.New("should not query data for an up-to-date client")

	since := time.Now().UTC()
	result, err := fx.sync.Pull(ctx, 1, &since, 1)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if !result.NoChanges {
		t.Fatal("expected no-changes short circuit")
	}
	if result.TenantVersion != 1 {
		t.Fatalf("expected acknowledged version 1, got %d", result.TenantVersion)
	}
	if len(result.Customers) != 0 {
		t.Fatalf("expected empty payload, got %d customers", len(result.Customers))
	}
}

func TestPullMutationThenPullDeliversChange(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	// Seed five mutations to move the counter to 5.
	for i := 0; i < 5; i++ {
		if _, err := fx.partType.Save(ctx, &domain.PartType{Workshop: &domain.Workshop{ID: 2}, Name: "oil filter"}); err != nil {
			t.Fatalf("seed save: %v", err)
		}
	}

	// A client fully caught up at version 5 sees nothing.
	since := time.Now().UTC()
	result, err := fx.sync.Pull(ctx, 2, &since, 5)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if !result.NoChanges {
		t.Fatal("expected caught-up client to short circuit")
	}

	// A new mutation bumps to 6; the same client now gets data.
	if _, err := fx.workOrder.Save(ctx, &domain.WorkOrder{Workshop: &domain.Workshop{ID: 2}, Status: domain.WorkOrderOpen}); err != nil {
		t.Fatalf("save work order: %v", err)
	}

	result, err = fx.sync.Pull(ctx, 2, &since, 5)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.NoChanges {
		t.Fatal("expected changes after new mutation")
	}
	if result.TenantVersion != 6 {
		t.Fatalf("expected tenant version 6, got %d", result.TenantVersion)
	}
	if len(result.WorkOrders) != 1 {
		t.Fatalf("expected the new work order in the window, got %d", len(result.WorkOrders))
	}
	if result.Cursor == nil {
		t.Fatal("expected a normalized cursor for incremental pull")
	}
	if !result.Cursor.Equal(since.Add(-domain.WatermarkSkew)) {
		t.Fatalf("expected cursor %v, got %v", since.Add(-domain.WatermarkSkew), result.Cursor)
	}
}

func TestPullIsolatesTenants(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	if _, err := fx.customer.Save(ctx, &domain.Customer{Workshop: &domain.Workshop{ID: 1}, Name: "Ana", Active: true}); err != nil {
		t.Fatalf("save customer: %v", err)
	}
	if _, err := fx.customer.Save(ctx, &domain.Customer{Workshop: &domain.Workshop{ID: 2}, Name: "Bruno", Active: true}); err != nil {
		t.Fatalf("save customer: %v", err)
	}

	result, err := fx.sync.Pull(ctx, 1, nil, 0)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(result.Customers) != 1 {
		t.Fatalf("expected one customer for tenant 1, got %d", len(result.Customers))
	}
	if result.Customers[0].Name != "Ana" {
		t.Fatalf("expected Ana, got %s", result.Customers[0].Name)
	}
	if result.TenantVersion != 1 {
		t.Fatalf("expected tenant 1 counter unaffected by tenant 2, got %d", result.TenantVersion)
	}
}

func TestPullSeesSoftDeletedCustomers(t *testing.T) {
	fx := newSyncFixture(t)
	tenantCtx := tenantctx.With(context.Background(), 3)

	saved, err := fx.customer.Save(tenantCtx, &domain.Customer{Workshop: &domain.Workshop{ID: 3}, Name: "Carla", Active: true})
	if err != nil {
		t.Fatalf("save customer: %v", err)
	}

	if err := fx.customer.Deactivate(tenantCtx, 3, saved.ID); err != nil {
		t.Fatalf("deactivate customer: %v", err)
	}

	result, err := fx.sync.Pull(tenantCtx, 3, nil, 0)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.TenantVersion != 2 {
		t.Fatalf("expected save plus deactivate to bump twice, got %d", result.TenantVersion)
	}
	if len(result.Customers) != 1 {
		t.Fatalf("expected deactivated customer in the window, got %d", len(result.Customers))
	}
	if result.Customers[0].Active {
		t.Fatal("expected customer to be inactive")
	}
}

func TestWorkOrderBatchCountsAsOneChange(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	batch := []*domain.WorkOrder{
		{Workshop: &domain.Workshop{ID: 4}, Status: domain.WorkOrderOpen},
		{Workshop: &domain.Workshop{ID: 4}, Status: domain.WorkOrderOpen},
	}
	saved, err := fx.workOrder.SaveAll(ctx, batch)
	if err != nil {
		t.Fatalf("save batch: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected two persisted orders, got %d", len(saved))
	}

	counter, err := fx.versions.Current(ctx, 4)
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if counter != 1 {
		t.Fatalf("expected one bump for the whole batch, got %d", counter)
	}
}

func TestSyncStatusReportsWatermarks(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	fx.sync.WithNow(func() time.Time { return now })

	status, err := fx.sync.Status(ctx, 5)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.TenantVersion != 0 {
		t.Fatalf("expected version 0 for untouched tenant, got %d", status.TenantVersion)
	}
	if status.CustomersUpdatedAt != nil || status.WorkOrdersUpdatedAt != nil || status.PartTypesUpdatedAt != nil {
		t.Fatal("expected nil watermarks for untouched tenant")
	}
	if !status.ServerTime.Equal(now) {
		t.Fatalf("expected server time %v, got %v", now, status.ServerTime)
	}

	if _, err := fx.customer.Save(ctx, &domain.Customer{Workshop: &domain.Workshop{ID: 5}, Name: "Davi", Active: true}); err != nil {
		t.Fatalf("save customer: %v", err)
	}

	status, err = fx.sync.Status(ctx, 5)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.TenantVersion != 1 {
		t.Fatalf("expected version 1, got %d", status.TenantVersion)
	}
	if status.CustomersUpdatedAt == nil {
		t.Fatal("expected customer watermark after save")
	}
}
