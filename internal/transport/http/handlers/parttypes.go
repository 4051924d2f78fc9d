package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/repository"
	"github.com/oficinahub/workshop-sync/internal/transport/http/middleware"
	"github.com/oficinahub/workshop-sync/internal/usecase"
)

// PartTypeHandler serves the parts catalog write path.
type PartTypeHandler struct {
	partTypes *usecase.PartTypeService
}

// NewPartTypeHandler builds a part type handler.
func NewPartTypeHandler(partTypes *usecase.PartTypeService) *PartTypeHandler {
	return &PartTypeHandler{partTypes: partTypes}
}

// RegisterRoutes mounts the catalog endpoints onto the provided group.
func (h *PartTypeHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Save)
	r.DELETE("/:id", h.Delete)
}

// Save creates or updates a catalog entry for the current workshop.
func (h *PartTypeHandler) Save(c *gin.Context) {
	if h.partTypes == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "part type handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	var req PartTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid part type payload"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "part type name cannot be empty"))
		return
	}

	partType := &domain.PartType{
		Workshop: &domain.Workshop{ID: tenantID},
		Name:     name,
	}

	status := http.StatusCreated
	if req.ID != nil {
		id, err := uuid.Parse(*req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "part type id is invalid"))
			return
		}
		partType.ID = id
		status = http.StatusOK
	}

	saved, err := h.partTypes.Save(c.Request.Context(), partType)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPartTypeRequired, Status: http.StatusBadRequest, Message: "part type is required"},
			{Err: repository.ErrTenantMismatch, Status: http.StatusForbidden, Message: "part type belongs to another workshop"},
		}, http.StatusInternalServerError, "failed to save part type")
		return
	}

	c.JSON(status, toPartTypeResponse(saved))
}

// Delete removes a catalog entry.
func (h *PartTypeHandler) Delete(c *gin.Context) {
	if h.partTypes == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "part type handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "part type id is invalid"))
		return
	}

	if err := h.partTypes.Delete(c.Request.Context(), tenantID, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "part type not found"},
		}, http.StatusInternalServerError, "failed to delete part type")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "part type deleted"})
}
