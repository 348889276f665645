package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// DefaultTraceIDHeader 默认的 Trace ID 请求头名称
	DefaultTraceIDHeader = "X-Trace-ID"
	// TraceIDKey Context 中存储 Trace ID 的键
	TraceIDKey = "trace_id"
)

// TraceMiddlewareWithConfig 创建请求追踪中间件（支持依赖注入）
// 从请求头获取或生成唯一的 Trace ID，注入到 gin.Context 和
// request.Context，并在响应头中返回
func TraceMiddlewareWithConfig(enabled bool, headerName string) gin.HandlerFunc {
	if headerName == "" {
		headerName = DefaultTraceIDHeader
	}
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		traceID := c.GetHeader(headerName)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)

		ctx := context.WithValue(c.Request.Context(), TraceIDKey, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(headerName, traceID)

		c.Next()
	}
}

// GetTraceID 从 context.Context 获取 Trace ID
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

// GetTraceIDFromGin 从 gin.Context 获取 Trace ID
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, exists := c.Get(TraceIDKey); exists {
		if traceID, ok := id.(string); ok {
			return traceID
		}
	}
	return ""
}
