package domain

import "time"

// TenantID identifies a workshop. Every syncable entity belongs to
// exactly one tenant and all version accounting is keyed by it.
type TenantID int64

// TenantVersion is the durable change counter for one tenant. Counter
// is monotonically non-decreasing for the tenant's entire lifetime; an
// unseen tenant reads as 0 and the first bump yields 1.
type TenantVersion struct {
	TenantID     TenantID
	Counter      int64
	LastBumpedAt time.Time
}

// TenantVersionChange captures the before/after state of a bump.
// Previous is nil when the bump created the counter row.
type TenantVersionChange struct {
	Previous *TenantVersion
	Current  TenantVersion
}

// TenantVersionBumpedEvent is emitted after a counter bump so
// downstream consumers (cache invalidators, push notifiers) can react.
type TenantVersionBumpedEvent struct {
	EventID         string
	TenantID        TenantID
	PreviousCounter *int64
	NewCounter      int64
	Source          string
	BumpedAt        time.Time
}
