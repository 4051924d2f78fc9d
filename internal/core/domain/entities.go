package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workshop is the tenant root entity. Its ID doubles as the TenantID.
type Workshop struct {
	ID        TenantID
	Name      string
	Document  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Customer belongs directly to a workshop. Customers are soft-deleted
// so removals still surface in incremental pulls as updates.
type Customer struct {
	ID        uuid.UUID
	Workshop  *Workshop
	Name      string
	Phone     *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkOrderStatus enumerates the lifecycle of a work order.
type WorkOrderStatus string

const (
	WorkOrderOpen      WorkOrderStatus = "open"
	WorkOrderInService WorkOrderStatus = "in_service"
	WorkOrderClosed    WorkOrderStatus = "closed"
	WorkOrderCancelled WorkOrderStatus = "cancelled"
)

// WorkOrder is a service order opened for a customer's visit.
type WorkOrder struct {
	ID        uuid.UUID
	Workshop  *Workshop
	Customer  *Customer
	Status    WorkOrderStatus
	Total     int64 // cents
	OpenedAt  time.Time
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vehicle is a vehicle entry serviced under a work order. It reaches
// its tenant through the owning order.
type Vehicle struct {
	ID        uuid.UUID
	Order     *WorkOrder
	Plate     string
	Model     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Part is a part fitted to a vehicle; the deepest ownership chain,
// three hops from the tenant.
type Part struct {
	ID        uuid.UUID
	Vehicle   *Vehicle
	Type      *PartType
	Quantity  int
	UnitPrice int64 // cents
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PartType is a catalog entry owned directly by a workshop.
type PartType struct {
	ID        uuid.UUID
	Workshop  *Workshop
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a workshop employee account. Credential material lives with
// the upstream identity provider; only the sync-relevant projection is
// kept here.
type User struct {
	ID        uuid.UUID
	Workshop  *Workshop
	Username  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
