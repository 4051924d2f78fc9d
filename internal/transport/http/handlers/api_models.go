package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
)

// ErrorResponse represents a generic error payload with request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request correlation ID.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness state.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// CustomerRequest is the payload for creating or updating a customer.
type CustomerRequest struct {
	ID    *string `json:"id"`
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone"`
}

// CustomerResponse is the API view of a customer.
type CustomerResponse struct {
	ID         string    `json:"id"`
	WorkshopID int64     `json:"workshop_id"`
	Name       string    `json:"name"`
	Phone      *string   `json:"phone,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WorkOrderRequest is the payload for creating or updating a work order.
type WorkOrderRequest struct {
	ID         *string `json:"id"`
	CustomerID *string `json:"customer_id"`
	Status     string  `json:"status" binding:"required"`
	TotalCents int64   `json:"total_cents"`
	OpenedAt   *string `json:"opened_at"`
	ClosedAt   *string `json:"closed_at"`
}

// WorkOrderBatchRequest carries a batch of work orders saved atomically.
type WorkOrderBatchRequest struct {
	Orders []WorkOrderRequest `json:"orders" binding:"required"`
}

// WorkOrderResponse is the API view of a work order.
type WorkOrderResponse struct {
	ID         string     `json:"id"`
	WorkshopID int64      `json:"workshop_id"`
	CustomerID *string    `json:"customer_id,omitempty"`
	Status     string     `json:"status"`
	TotalCents int64      `json:"total_cents"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// WorkOrderBatchResponse echoes the persisted batch.
type WorkOrderBatchResponse struct {
	Orders []WorkOrderResponse `json:"orders"`
}

// PartTypeRequest is the payload for creating or updating a catalog entry.
type PartTypeRequest struct {
	ID   *string `json:"id"`
	Name string  `json:"name" binding:"required"`
}

// PartTypeResponse is the API view of a part type.
type PartTypeResponse struct {
	ID         string    `json:"id"`
	WorkshopID int64     `json:"workshop_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PullResponse is the incremental sync payload returned to clients.
type PullResponse struct {
	TenantVersion int64               `json:"tenant_version"`
	Cursor        *time.Time          `json:"cursor,omitempty"`
	NoChanges     bool                `json:"no_changes"`
	Customers     []CustomerResponse  `json:"customers"`
	WorkOrders    []WorkOrderResponse `json:"work_orders"`
	PartTypes     []PartTypeResponse  `json:"part_types"`
}

// SyncStatusResponse is the lightweight change probe payload.
type SyncStatusResponse struct {
	ServerTime          time.Time  `json:"server_time"`
	TenantVersion       int64      `json:"tenant_version"`
	CustomersUpdatedAt  *time.Time `json:"customers_updated_at,omitempty"`
	WorkOrdersUpdatedAt *time.Time `json:"work_orders_updated_at,omitempty"`
	PartTypesUpdatedAt  *time.Time `json:"part_types_updated_at,omitempty"`
}

func toCustomerResponse(c *domain.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Workshop != nil {
		resp.WorkshopID = int64(c.Workshop.ID)
	}
	return resp
}

func toWorkOrderResponse(o *domain.WorkOrder) WorkOrderResponse {
	resp := WorkOrderResponse{
		ID:         o.ID.String(),
		Status:     string(o.Status),
		TotalCents: o.Total,
		OpenedAt:   o.OpenedAt,
		ClosedAt:   o.ClosedAt,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if o.Workshop != nil {
		resp.WorkshopID = int64(o.Workshop.ID)
	}
	if o.Customer != nil {
		id := o.Customer.ID.String()
		resp.CustomerID = &id
	}
	return resp
}

func toPartTypeResponse(p *domain.PartType) PartTypeResponse {
	resp := PartTypeResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Workshop != nil {
		resp.WorkshopID = int64(p.Workshop.ID)
	}
	return resp
}
