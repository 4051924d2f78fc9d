package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/tenantctx"
)

func newTenantRouter(capture *domain.TenantID, captureCtx *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequireTenant())
	router.GET("/", func(c *gin.Context) {
		if id, ok := TenantFrom(c); ok {
			*capture = id
		}
		if _, ok := tenantctx.From(c.Request.Context()); ok {
			*captureCtx = true
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireTenantAcceptsValidHeader(t *testing.T) {
	var captured domain.TenantID
	var onContext bool
	router := newTenantRouter(&captured, &onContext)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TenantIDHeader, "42")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured != 42 {
		t.Fatalf("expected tenant 42 on gin context, got %d", captured)
	}
	if !onContext {
		t.Fatal("expected tenant threaded onto the request context")
	}
}

func TestRequireTenantRejectsMissingHeader(t *testing.T) {
	var captured domain.TenantID
	var onContext bool
	router := newTenantRouter(&captured, &onContext)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing header, got %d", rr.Code)
	}
}

func TestRequireTenantRejectsInvalidHeader(t *testing.T) {
	cases := []string{"abc", "0", "-3", "1.5"}

	for _, value := range cases {
		t.Run(value, func(t *testing.T) {
			var captured domain.TenantID
			var onContext bool
			router := newTenantRouter(&captured, &onContext)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(TenantIDHeader, value)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for header %q, got %d", value, rr.Code)
			}
		})
	}
}
