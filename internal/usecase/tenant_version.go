package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/repository"
)

// ErrTenantRequired indicates the tenant identifier is missing or invalid.
var ErrTenantRequired = errors.New("tenant id is required")

// TenantVersionMetrics captures telemetry hooks for counter and cache tracking.
type TenantVersionMetrics interface {
	IncCacheHit()
	IncCacheMiss()
	IncBump()
	IncSkippedBump()
}

// TenantVersionOptions configures optional behaviours for the service.
type TenantVersionOptions struct {
	CacheTTL time.Duration
}

// TenantVersionService manages per-tenant change counters with
// cache write-through and event propagation.
type TenantVersionService struct {
	repo     port.TenantVersionRepository
	cache    port.TenantVersionCache
	events   port.EventPublisher
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
	metrics  TenantVersionMetrics
}

// NewTenantVersionService constructs the tenant version service.
func NewTenantVersionService(repo port.TenantVersionRepository, cache port.TenantVersionCache, events port.EventPublisher, opts TenantVersionOptions) *TenantVersionService {
	svc := &TenantVersionService{
		repo:     repo,
		cache:    cache,
		events:   events,
		cacheTTL: opts.CacheTTL,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	if svc.cacheTTL <= 0 {
		svc.cacheTTL = 5 * time.Minute
	}
	return svc
}

// WithLogger attaches a structured logger to the service.
func (s *TenantVersionService) WithLogger(logger *zap.Logger) *TenantVersionService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNow overrides the clock, primarily for deterministic testing.
func (s *TenantVersionService) WithNow(now func() time.Time) *TenantVersionService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithMetrics wires telemetry observers for counter operations.
func (s *TenantVersionService) WithMetrics(metrics TenantVersionMetrics) *TenantVersionService {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// Current returns the tenant's counter, hydrating the cache on miss.
// An unseen tenant reads as 0. Concurrent bumps may race this read;
// the value is a lower bound, not a snapshot.
func (s *TenantVersionService) Current(ctx context.Context, tenantID domain.TenantID) (int64, error) {
	if tenantID <= 0 {
		return 0, ErrTenantRequired
	}

	if s.cache != nil {
		counter, err := s.cache.GetTenantVersion(ctx, tenantID)
		if err == nil {
			if s.metrics != nil {
				s.metrics.IncCacheHit()
			}
			return counter, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("tenant version cache lookup failed", zap.Int64("tenant_id", int64(tenantID)), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.IncCacheMiss()
		}
	}

	version, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if s.cache != nil && version.Counter > 0 {
		if cacheErr := s.cache.SetTenantVersion(ctx, tenantID, version.Counter, s.cacheTTL); cacheErr != nil {
			s.logger.Warn("failed to populate tenant version cache", zap.Int64("tenant_id", int64(tenantID)), zap.Error(cacheErr))
		}
	}

	return version.Counter, nil
}

// Bump increments the tenant's counter and propagates the new value to
// the cache and the event stream. Cache and event failures are logged
// and swallowed; the durable increment is the only required effect.
func (s *TenantVersionService) Bump(ctx context.Context, tenantID domain.TenantID, source string) (domain.TenantVersionChange, error) {
	if tenantID <= 0 {
		return domain.TenantVersionChange{}, ErrTenantRequired
	}

	bumpedAt := s.now().UTC()
	change, err := s.repo.Bump(ctx, tenantID, bumpedAt)
	if err != nil {
		return domain.TenantVersionChange{}, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetTenantVersion(ctx, tenantID, change.Current.Counter, s.cacheTTL); cacheErr != nil {
			s.logger.Warn("failed to update tenant version cache", zap.Int64("tenant_id", int64(tenantID)), zap.Error(cacheErr))
		}
	}

	if s.events != nil {
		event := domain.TenantVersionBumpedEvent{
			EventID:    uuid.NewString(),
			TenantID:   tenantID,
			NewCounter: change.Current.Counter,
			Source:     source,
			BumpedAt:   bumpedAt,
		}
		if change.Previous != nil {
			prev := change.Previous.Counter
			event.PreviousCounter = &prev
		}
		if pubErr := s.events.PublishTenantVersionBumped(ctx, event); pubErr != nil {
			s.logger.Warn("failed to publish tenant version event", zap.Int64("tenant_id", int64(tenantID)), zap.Error(pubErr))
		}
	}

	if s.metrics != nil {
		s.metrics.IncBump()
	}

	s.logger.Debug("tenant version bumped",
		zap.Int64("tenant_id", int64(tenantID)),
		zap.Int64("counter", change.Current.Counter),
		zap.String("source", source),
	)

	return change, nil
}
