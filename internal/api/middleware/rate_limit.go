package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"forms-service/internal/services"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	redisService *services.RedisService
}

// NewRateLimitMiddleware builds the limiter. With a nil service every request passes.
func NewRateLimitMiddleware(redisService *services.RedisService) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redisService: redisService,
	}
}

// RateLimit limits authenticated users per endpoint. Guests fall back to their IP.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := "ip:" + c.ClientIP()
		if user := CurrentUser(c); user != nil {
			subject = "user:" + user.ID
		}
		rm.check(c, fmt.Sprintf("rate_limit:%s:%s", subject, c.FullPath()), requests, window)
	}
}

// RateLimitIP creates a rate limiting middleware for public routes based on IP address
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		rm.check(c, fmt.Sprintf("rate_limit_ip:%s:%s", c.ClientIP(), c.FullPath()), requests, window)
	}
}

func (rm *RateLimitMiddleware) check(c *gin.Context, key string, requests int, window time.Duration) {
	if rm.redisService == nil {
		c.Next()
		return
	}

	allowed, err := rm.redisService.CheckRateLimit(c.Request.Context(), key, requests, window)
	if err != nil {
		slog.Error("Rate limit check failed", "key", key, "error", err)
		response.Fail(c, http.StatusInternalServerError, "Rate limit check failed")
		return
	}

	if !allowed {
		response.Fail(c, http.StatusTooManyRequests,
			fmt.Sprintf("Too many requests. Limit: %d per %v", requests, window))
		return
	}

	c.Next()
}
