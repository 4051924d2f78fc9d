package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful
// for development environments without brokers.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

var _ port.EventPublisher = (*StubPublisher)(nil)

// PublishTenantVersionBumped logs tenant.version.bumped events.
func (p *StubPublisher) PublishTenantVersionBumped(_ context.Context, event domain.TenantVersionBumpedEvent) error {
	p.logger.Info("stub event published",
		zap.String("event_type", topicTenantVersionBump),
		zap.Int64("tenant_id", int64(event.TenantID)),
		zap.Int64("new_counter", event.NewCounter),
		zap.String("source", event.Source),
		zap.Time("bumped_at", event.BumpedAt),
	)
	return nil
}
