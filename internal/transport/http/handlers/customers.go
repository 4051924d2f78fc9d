package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/repository"
	"github.com/oficinahub/workshop-sync/internal/transport/http/middleware"
	"github.com/oficinahub/workshop-sync/internal/usecase"
)

// CustomerHandler serves the customer write path.
type CustomerHandler struct {
	customers *usecase.CustomerService
}

// NewCustomerHandler builds a customer handler.
func NewCustomerHandler(customers *usecase.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// RegisterRoutes mounts the customer endpoints onto the provided group.
func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Save)
	r.GET("/:id", h.Get)
	r.DELETE("/:id", h.Deactivate)
}

// Save creates or updates a customer for the current workshop.
func (h *CustomerHandler) Save(c *gin.Context) {
	if h.customers == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "customer handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid customer payload"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "customer name cannot be empty"))
		return
	}

	customer := &domain.Customer{
		Workshop: &domain.Workshop{ID: tenantID},
		Name:     name,
		Phone:    req.Phone,
		Active:   true,
	}

	status := http.StatusCreated
	if req.ID != nil {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "customer id is invalid"))
			return
		}
		customer.ID = id
		status = http.StatusOK
	}

	saved, err := h.customers.Save(c.Request.Context(), customer)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCustomerRequired, Status: http.StatusBadRequest, Message: "customer is required"},
			{Err: repository.ErrTenantMismatch, Status: http.StatusForbidden, Message: "customer belongs to another workshop"},
		}, http.StatusInternalServerError, "failed to save customer")
		return
	}

	c.JSON(status, toCustomerResponse(saved))
}

// Get fetches a customer by ID scoped to the current workshop.
func (h *CustomerHandler) Get(c *gin.Context) {
	if h.customers == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "customer handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "customer id is invalid"))
		return
	}

	customer, err := h.customers.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "customer not found"},
		}, http.StatusInternalServerError, "failed to load customer")
		return
	}

	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

// Deactivate soft-deletes a customer. The record keeps its row so the
// removal still reaches offline clients on their next pull.
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	if h.customers == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "customer handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "customer id is invalid"))
		return
	}

	if err := h.customers.Deactivate(c.Request.Context(), tenantID, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "customer not found"},
		}, http.StatusInternalServerError, "failed to deactivate customer")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "customer deactivated"})
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
