package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/repository"
)

const defaultTenantVersionPrefix = "wshop:tenant_version"

// TenantVersionCache caches current tenant counters so pull checks do
// not hit PostgreSQL on every poll.
type TenantVersionCache struct {
	client *red.Client
	prefix string
}

// NewTenantVersionCache constructs the tenant version cache helper.
func NewTenantVersionCache(client *red.Client, keyPrefix string) *TenantVersionCache {
	prefix := keyPrefix
	if prefix == "" {
		prefix = defaultTenantVersionPrefix
	}
	return &TenantVersionCache{client: client, prefix: prefix}
}

var _ port.TenantVersionCache = (*TenantVersionCache)(nil)

// GetTenantVersion fetches the cached counter for a tenant.
func (c *TenantVersionCache) GetTenantVersion(ctx context.Context, tenantID domain.TenantID) (int64, error) {
	result, err := c.client.Get(ctx, c.key(tenantID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("redis get tenant version: %w", err)
	}

	counter, parseErr := strconv.ParseInt(result, 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("parse cached tenant version: %w", parseErr)
	}
	return counter, nil
}

// SetTenantVersion stores the counter with TTL.
func (c *TenantVersionCache) SetTenantVersion(ctx context.Context, tenantID domain.TenantID, counter int64, ttl time.Duration) error {
	if counter <= 0 {
		return fmt.Errorf("counter must be positive")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if err := c.client.Set(ctx, c.key(tenantID), strconv.FormatInt(counter, 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis set tenant version: %w", err)
	}
	return nil
}

// DeleteTenantVersion removes the cached counter entry.
func (c *TenantVersionCache) DeleteTenantVersion(ctx context.Context, tenantID domain.TenantID) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("redis delete tenant version: %w", err)
	}
	return nil
}

func (c *TenantVersionCache) key(tenantID domain.TenantID) string {
	return fmt.Sprintf("%s:%d", c.prefix, int64(tenantID))
}
