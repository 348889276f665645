package middleware

import (
	"github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserAuthTokenWithManager 用户 Token 认证中间件（使用注入的 TokenManager）
func UserAuthTokenWithManager(tokens app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		response := app.NewResponse(c)

		if s, exist := c.GetQuery("authorization"); exist {
			token = s
		} else if s, exist := c.GetQuery("Authorization"); exist {
			token = s
		} else if s := c.GetHeader("authorization"); len(s) != 0 {
			token = s
		} else if s := c.GetHeader("Authorization"); len(s) != 0 {
			token = s
		} else if s, exist := c.GetQuery("token"); exist {
			token = s
		} else if s = c.GetHeader("token"); len(s) != 0 {
			token = s
		}

		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := tokens.Parse(token)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Set("user_token", user)

		c.Next()
	}
}
