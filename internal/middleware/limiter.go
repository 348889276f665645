package middleware

import (
	"github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"
	"github.com/notehive/collab-note-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter 按路由桶限流，桶内令牌耗尽返回 429
func RateLimiter(l limiter.LimiterIface) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.Key(c)
		if bucket, ok := l.GetBucket(key); ok {
			count := bucket.TakeAvailable(1)
			if count == 0 {
				response := app.NewResponse(c)
				response.ToResponse(code.ErrorTooManyRequests)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
