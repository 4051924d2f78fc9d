package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/tenantctx"
)

func newObserverFixture(t *testing.T) (*MutationObserver, *stubTenantVersionRepo, *stubMetrics) {
	t.Helper()

	repo := newStubTenantVersionRepo()
	metrics := &stubMetrics{}
	versions := NewTenantVersionService(repo, nil, nil, TenantVersionOptions{}).WithLogger(zaptest.NewLogger(t))
	observer := NewMutationObserver(versions).
		WithLogger(zaptest.NewLogger(t)).
		WithMetrics(metrics)
	return observer, repo, metrics
}

func counterOf(t *testing.T, repo *stubTenantVersionRepo, tenantID domain.TenantID) int64 {
	t.Helper()

	version, err := repo.Get(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return version.Counter
}

func TestObserverAfterSaveResolvesStructurally(t *testing.T) {
	observer, repo, _ := newObserverFixture(t)

	customer := &domain.Customer{ID: uuid.New(), Workshop: &domain.Workshop{ID: 21}}
	observer.AfterSave(context.Background(), customer)

	if got := counterOf(t, repo, 21); got != 1 {
		t.Fatalf("expected counter 1 after save, got %d", got)
	}
}

func TestObserverAfterSaveWalksDeepChain(t *testing.T) {
	observer, repo, _ := newObserverFixture(t)

	part := &domain.Part{
		ID: uuid.New(),
		Vehicle: &domain.Vehicle{
			Order: &domain.WorkOrder{Workshop: &domain.Workshop{ID: 33}},
		},
	}
	observer.AfterSave(context.Background(), part)

	if got := counterOf(t, repo, 33); got != 1 {
		t.Fatalf("expected counter 1 via three-hop chain, got %d", got)
	}
}

func TestObserverAfterSaveFallsBackToContext(t *testing.T) {
	observer, repo, _ := newObserverFixture(t)

	// Broken chain: the entity carries no workshop link.
	orphan := &domain.Customer{ID: uuid.New()}
	ctx := tenantctx.With(context.Background(), 44)
	observer.AfterSave(ctx, orphan)

	if got := counterOf(t, repo, 44); got != 1 {
		t.Fatalf("expected context fallback bump, got %d", got)
	}
}

func TestObserverAfterSaveSkipsWhenUnresolvable(t *testing.T) {
	observer, repo, metrics := newObserverFixture(t)

	orphan := &domain.Customer{ID: uuid.New()}
	observer.AfterSave(context.Background(), orphan)

	if _, err := repo.Get(context.Background(), 0); err == nil {
		t.Fatal("no counter should exist for an unresolvable mutation")
	}
	if metrics.skipped != 1 {
		t.Fatalf("expected one skipped bump, got %d", metrics.skipped)
	}
}

func TestObserverAfterSaveBatchBumpsOnce(t *testing.T) {
	observer, repo, _ := newObserverFixture(t)

	batch := []*domain.WorkOrder{
		{ID: uuid.New(), Workshop: &domain.Workshop{ID: 55}},
		{ID: uuid.New(), Workshop: &domain.Workshop{ID: 55}},
		{ID: uuid.New(), Workshop: &domain.Workshop{ID: 55}},
	}
	observer.AfterSave(context.Background(), batch)

	if got := counterOf(t, repo, 55); got != 1 {
		t.Fatalf("expected a single bump for the whole batch, got %d", got)
	}
}

func TestObserverAfterDeleteUsesContextOnly(t *testing.T) {
	observer, repo, metrics := newObserverFixture(t)

	observer.AfterDelete(tenantctx.With(context.Background(), 66))
	if got := counterOf(t, repo, 66); got != 1 {
		t.Fatalf("expected delete bump from context tenant, got %d", got)
	}

	observer.AfterDelete(context.Background())
	if metrics.skipped != 1 {
		t.Fatalf("expected contextless delete to skip, got %d skips", metrics.skipped)
	}
}

func TestObserverSwallowsBumpFailures(t *testing.T) {
	repo := newStubTenantVersionRepo()
	repo.bumpErr = errors.New("database unavailable")
	metrics := &stubMetrics{}
	versions := NewTenantVersionService(repo, nil, nil, TenantVersionOptions{})
	observer := NewMutationObserver(versions).
		WithLogger(zaptest.NewLogger(t)).
		WithMetrics(metrics)

	customer := &domain.Customer{ID: uuid.New(), Workshop: &domain.Workshop{ID: 77}}

	// Must not panic or propagate; the triggering write already
	// committed and cannot be rolled back from here.
	observer.AfterSave(context.Background(), customer)

	if metrics.skipped != 1 {
		t.Fatalf("expected failed bump to count as skipped, got %d", metrics.skipped)
	}
}
