package middleware

import (
	"github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NotFound 未匹配路由统一返回 404 业务码
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)
		response.ToResponse(code.ErrorNotFoundAPI)
		c.Abort()
	}
}
