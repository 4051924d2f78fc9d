package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type fakeRateLimitStore struct {
	trimErr   error
	count     int
	countErr  error
	oldest    time.Time
	hasOldest bool
	oldestErr error
	recordErr error

	trimmedKeys []string
	recordedKey string
	recordCalls int
}

func (f *fakeRateLimitStore) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	f.trimmedKeys = append(f.trimmedKeys, identifier)
	return f.trimErr
}

func (f *fakeRateLimitStore) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	return f.count, f.countErr
}

func (f *fakeRateLimitStore) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	f.recordedKey = identifier
	f.recordCalls++
	return f.recordErr
}

func (f *fakeRateLimitStore) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	return f.oldest, f.hasOldest, f.oldestErr
}

func newRateLimitedRouter(store *fakeRateLimitStore, now time.Time, t *testing.T, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := gin.New()
	router.Use(limiter.RateLimit(RateLimitRule{
		Name:   "sync_pull",
		Limit:  limit,
		Window: time.Minute,
		Identifier: func(c *gin.Context) (string, bool) {
			return "17", true
		},
	}))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiterAllowsWhenBelowLimit(t *testing.T) {
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{count: 2}

	router := newRateLimitedRouter(store, now, t, 5)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.recordCalls != 1 {
		t.Fatalf("expected record attempt to be called once, got %d", store.recordCalls)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("expected limit header 5, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Fatalf("expected remaining header 2, got %q", got)
	}
	if store.recordedKey != "sync_pull:17" {
		t.Fatalf("expected key scoped by rule name, got %q", store.recordedKey)
	}
}

func TestRateLimiterBlocksWhenAtLimit(t *testing.T) {
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{
		count:     5,
		oldest:    now.Add(-30 * time.Second),
		hasOldest: true,
	}

	router := newRateLimitedRouter(store, now, t, 5)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if store.recordCalls != 0 {
		t.Fatalf("blocked request must not record an attempt, got %d calls", store.recordCalls)
	}
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["error"] != "rate limit exceeded" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestRateLimiterFailsOpenOnStoreErrors(t *testing.T) {
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{countErr: context.DeadlineExceeded}

	router := newRateLimitedRouter(store, now, t, 5)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when store is unavailable, got %d", rr.Code)
	}
}
