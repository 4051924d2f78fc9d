package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/port"
)

// IdentifierFunc extracts the identifier used to scope rate limits.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule configures a sliding-window limit for a particular identifier.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter enforces sliding-window limits backed by a shared store.
// Store failures fail open: a throttling outage must not take the sync
// surface down with it.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// TenantIdentifier scopes limits per tenant so one noisy workshop
// cannot exhaust another's budget.
func TenantIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		tenantID, ok := TenantFrom(c)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(int64(tenantID), 10), true
	}
}

// RateLimit returns a Gin middleware enforcing the provided rule.
func (rl *RateLimiter) RateLimit(rule RateLimitRule) gin.HandlerFunc {
	if rule.Name == "" {
		rule.Name = "default"
	}

	return func(c *gin.Context) {
		if rl.store == nil || rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			c.Next()
			return
		}

		identifier, ok := rule.Identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		now := rl.now()
		key := rule.Name + ":" + identifier
		ctx := c.Request.Context()

		if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
			rl.logger.Warn("rate limit trim failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
		if err != nil {
			rl.logger.Warn("rate limit count failed", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}

		if count >= rule.Limit {
			retryAfter := rule.Window
			if oldest, found, err := rl.store.OldestAttempt(ctx, key, rule.Window, now); err == nil && found {
				retryAfter = oldest.Add(rule.Window).Sub(now)
				if retryAfter < time.Second {
					retryAfter = time.Second
				}
			}

			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(retryAfter.Round(time.Second).Seconds()),
			})
			return
		}

		if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
			rl.logger.Warn("rate limit record failed", zap.String("rule", rule.Name), zap.Error(err))
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		remaining := rule.Limit - count - 1
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}
