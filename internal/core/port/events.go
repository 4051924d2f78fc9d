package port

import (
	"context"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

// EventPublisher fans domain events out to interested consumers.
// Publishing is best-effort; failures must never affect the mutation
// that produced the event.
type EventPublisher interface {
	PublishTenantVersionBumped(ctx context.Context, event domain.TenantVersionBumpedEvent) error
}
