package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/oficinahub/workshop-sync/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestTenantVersionCache_SetAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewTenantVersionCache(client, "wshop:tenant_version")

	ctx := context.Background()
	ttl := 5 * time.Minute

	if err := cache.SetTenantVersion(ctx, 42, 7, ttl); err != nil {
		t.Fatalf("SetTenantVersion returned error: %v", err)
	}

	counter, err := cache.GetTenantVersion(ctx, 42)
	if err != nil {
		t.Fatalf("GetTenantVersion returned error: %v", err)
	}
	if counter != 7 {
		t.Fatalf("expected counter 7, got %d", counter)
	}

	remaining := server.TTL("wshop:tenant_version:42")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestTenantVersionCache_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewTenantVersionCache(client, "wshop:tenant_version")

	if _, err := cache.GetTenantVersion(context.Background(), 99); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cold key, got %v", err)
	}
}

func TestTenantVersionCache_OverwriteKeepsLatest(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewTenantVersionCache(client, "wshop:tenant_version")

	ctx := context.Background()
	for counter := int64(1); counter <= 3; counter++ {
		if err := cache.SetTenantVersion(ctx, 1, counter, time.Minute); err != nil {
			t.Fatalf("SetTenantVersion returned error: %v", err)
		}
	}

	counter, err := cache.GetTenantVersion(ctx, 1)
	if err != nil {
		t.Fatalf("GetTenantVersion returned error: %v", err)
	}
	if counter != 3 {
		t.Fatalf("expected latest counter 3, got %d", counter)
	}
}

func TestTenantVersionCache_Delete(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewTenantVersionCache(client, "wshop:tenant_version")

	ctx := context.Background()
	if err := cache.SetTenantVersion(ctx, 5, 2, time.Minute); err != nil {
		t.Fatalf("SetTenantVersion returned error: %v", err)
	}
	if err := cache.DeleteTenantVersion(ctx, 5); err != nil {
		t.Fatalf("DeleteTenantVersion returned error: %v", err)
	}
	if _, err := cache.GetTenantVersion(ctx, 5); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTenantVersionCache_RejectsInvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewTenantVersionCache(client, "wshop:tenant_version")

	ctx := context.Background()
	if err := cache.SetTenantVersion(ctx, 1, 0, time.Minute); err == nil {
		t.Fatal("expected error for non-positive counter")
	}
	if err := cache.SetTenantVersion(ctx, 1, 1, 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}
