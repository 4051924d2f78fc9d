package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oficinahub/workshop-sync/internal/transport/http/middleware"
	"github.com/oficinahub/workshop-sync/internal/usecase"
)

// SyncHandler serves the incremental pull surface.
type SyncHandler struct {
	sync *usecase.SyncService
}

// NewSyncHandler builds a sync handler.
func NewSyncHandler(sync *usecase.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// RegisterRoutes mounts the sync endpoints onto the provided group.
func (h *SyncHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/pull", h.Pull)
	r.GET("/status", h.Status)
}

// Pull serves an incremental pull. The `since` query parameter is the
// client's last acknowledged watermark in RFC 3339 form; `last_version`
// is the counter acknowledged on the previous pull. Omitting both asks
// for a full sync.
func (h *SyncHandler) Pull(c *gin.Context) {
	if h.sync == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "sync handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "since must be an RFC 3339 timestamp"))
			return
		}
		since = &parsed
	}

	var lastVersion int64
	if raw := c.Query("last_version"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "last_version must be a non-negative integer"))
			return
		}
		lastVersion = parsed
	}

	result, err := h.sync.Pull(c.Request.Context(), tenantID, since, lastVersion)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTenantRequired, Status: http.StatusBadRequest, Message: "workshop id is required"},
		}, http.StatusInternalServerError, "failed to serve pull")
		return
	}

	resp := PullResponse{
		TenantVersion: result.TenantVersion,
		Cursor:        result.Cursor,
		NoChanges:     result.NoChanges,
		Customers:     make([]CustomerResponse, 0, len(result.Customers)),
		WorkOrders:    make([]WorkOrderResponse, 0, len(result.WorkOrders)),
		PartTypes:     make([]PartTypeResponse, 0, len(result.PartTypes)),
	}
	for _, customer := range result.Customers {
		resp.Customers = append(resp.Customers, toCustomerResponse(customer))
	}
	for _, order := range result.WorkOrders {
		resp.WorkOrders = append(resp.WorkOrders, toWorkOrderResponse(order))
	}
	for _, partType := range result.PartTypes {
		resp.PartTypes = append(resp.PartTypes, toPartTypeResponse(partType))
	}

	c.JSON(http.StatusOK, resp)
}

// Status serves the change probe: counter plus per-collection
// high-water marks, no entity data.
func (h *SyncHandler) Status(c *gin.Context) {
	if h.sync == nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "sync handler not fully configured"))
		return
	}

	tenantID, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "workshop id is required"))
		return
	}

	status, err := h.sync.Status(c.Request.Context(), tenantID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTenantRequired, Status: http.StatusBadRequest, Message: "workshop id is required"},
		}, http.StatusInternalServerError, "failed to read sync status")
		return
	}

	c.JSON(http.StatusOK, SyncStatusResponse{
		ServerTime:          status.ServerTime,
		TenantVersion:       status.TenantVersion,
		CustomersUpdatedAt:  status.CustomersUpdatedAt,
		WorkOrdersUpdatedAt: status.WorkOrdersUpdatedAt,
		PartTypesUpdatedAt:  status.PartTypesUpdatedAt,
	})
}
