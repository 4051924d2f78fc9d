package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/repository"
	"github.com/oficinahub/workshop-sync/internal/transport/http/middleware"
	"github.com/oficinahub/workshop-sync/internal/usecase"
)

// WorkOrderHandler serves the work order write path.
type WorkOrderHandler struct {
	workOrders *usecase.WorkOrderService
}

// NewWorkOrderHandler builds a work order handler.
func NewWorkOrderHandler(workOrders *usecase.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrders: workOrders}
}

// RegisterRoutes mounts the work order endpoints onto the provided group.
func (h *WorkOrderHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Save)
	r.POST("/batch", h.SaveBatch)
	r.GET("/:id", h.Get)
	r.DELETE("/:id", h.Delete)
}

var workOrderStatuses = map[domain.WorkOrderStatus]bool{
	domain.WorkOrderOpen:      true,
	domain.WorkOrderInService: true,
	domain.WorkOrderClosed:    true,
	domain.WorkOrderCancelled: true,
}

func buildWorkOrder(tenantID domain.TenantID, req WorkOrderRequest) (*domain.WorkOrder, string) {
	status := domain.WorkOrderStatus(req.Status)
	if !workOrderStatuses[status] {
		return nil, "work order status is invalid"
	}
	if req.TotalCents < 0 {
		return nil, "work order total cannot be negative"
	}

	order := &domain.WorkOrder{
		Workshop: &domain.Workshop{ID: tenantID},
		Status:   status,
		Total:    req.TotalCents,
		OpenedAt: time.Now().UTC(),
	}

	if req.ID != nil {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			return nil, "work order id is invalid"
		}
		order.ID = id
	}

	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, "customer id is invalid"
		}
		order.Customer = &domain.Customer{ID: customerID, Workshop: order.Workshop}
	}

	openedAt, err := parseOptionalTime(req.OpenedAt)
	if err != nil {
		return nil, "opened_at must be an RFC 3339 timestamp"
	}
	if openedAt != nil {
		order.OpenedAt = openedAt.UTC()
	}

	closedAt, err := parseOptionalTime(req.ClosedAt)
	if err != nil {
		return nil, "closed_at must be an RFC 3339 timestamp"
	}
	order.ClosedAt = closedAt

	return order, ""
}

// Save creates or updates a work order for the current workshop.
func (h *WorkOrderHandler) Save(c *gin.Context) {
	if h.workOrders == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "work order handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	var req WorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid work order payload"))
		return
	}

	order, problem := buildWorkOrder(tenantID, req)
	if problem != "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, problem))
		return
	}

	status := http.StatusCreated
	if req.ID != nil {
		status = http.StatusOK
	}

	saved, err := h.workOrders.Save(c.Request.Context(), order)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWorkOrderRequired, Status: http.StatusBadRequest, Message: "work order is required"},
			{Err: repository.ErrTenantMismatch, Status: http.StatusForbidden, Message: "work order belongs to another workshop"},
		}, http.StatusInternalServerError, "failed to save work order")
		return
	}

	c.JSON(status, toWorkOrderResponse(saved))
}

// SaveBatch persists a batch of work orders in a single transaction.
// The whole batch counts as one change for versioning purposes.
func (h *WorkOrderHandler) SaveBatch(c *gin.Context) {
	if h.workOrders == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "work order handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	var req WorkOrderBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid work order batch payload"))
		return
	}
	if len(req.Orders) == 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "work order batch cannot be empty"))
		return
	}

	orders := make([]*domain.WorkOrder, 0, len(req.Orders))
	for _, item := range req.Orders {
		order, problem := buildWorkOrder(tenantID, item)
		if problem != "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, problem))
			return
		}
		orders = append(orders, order)
	}

	saved, err := h.workOrders.SaveAll(c.Request.Context(), orders)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrTenantMismatch, Status: http.StatusForbidden, Message: "work order belongs to another workshop"},
		}, http.StatusInternalServerError, "failed to save work order batch")
		return
	}

	resp := WorkOrderBatchResponse{Orders: make([]WorkOrderResponse, 0, len(saved))}
	for _, order := range saved {
		resp.Orders = append(resp.Orders, toWorkOrderResponse(order))
	}

	c.JSON(http.StatusCreated, resp)
}

// Get fetches a work order by ID scoped to the current workshop.
func (h *WorkOrderHandler) Get(c *gin.Context) {
	if h.workOrders == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "work order handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "work order id is invalid"))
		return
	}

	order, err := h.workOrders.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "work order not found"},
		}, http.StatusInternalServerError, "failed to load work order")
		return
	}

	c.JSON(http.StatusOK, toWorkOrderResponse(order))
}

// Delete removes a work order.
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	if h.workOrders == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "work order handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "work order id is invalid"))
		return
	}

	if err := h.workOrders.Delete(c.Request.Context(), tenantID, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "work order not found"},
		}, http.StatusInternalServerError, "failed to delete work order")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "work order deleted"})
}
