package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/tenantctx"
)

const (
	// TenantIDHeader carries the workshop identifier resolved by the
	// upstream gateway after authentication.
	TenantIDHeader = "X-Workshop-ID"
	// TenantIDKey is the gin context key for the current tenant.
	TenantIDKey = "tenant_id"
)

// RequireTenant extracts the tenant from the gateway header, stores it
// on the gin context and threads it through the request context so
// fallback tenant resolution works anywhere down the call chain.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "workshop id header is required"})
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "workshop id header is invalid"})
			return
		}

		tenantID := domain.TenantID(id)
		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(tenantctx.With(c.Request.Context(), tenantID))

		c.Next()
	}
}

// TenantFrom returns the tenant stored by RequireTenant.
func TenantFrom(c *gin.Context) (domain.TenantID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(domain.TenantID)
	return id, ok
}
