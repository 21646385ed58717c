// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitWindow 按用户的滑动窗口限流中间件，窗口与配额可配置
func RateLimitWindow(limit int, window time.Duration, keyPrefix string, limiter RateLimiter) gin.HandlerFunc {
	if limit <= 0 || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if window <= 0 {
		window = time.Minute
	}
	if keyPrefix == "" {
		keyPrefix = "ratelimit"
	}

	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			userID = "anonymous"
		}

		key := keyPrefix + ":" + userID + ":" + c.Request.URL.Path

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// 限流器故障时放行，避免影响业务
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":     429,
				"message":  "rate limit exceeded",
				"trace_id": c.GetString("trace_id"),
			})
			return
		}
		c.Next()
	}
}
