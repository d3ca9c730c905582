package middleware

import (
	"github.com/gin-gonic/gin"

	"storybook-builder-api/pkg/logger"
)

// SessionParam 路由中的会话 id 参数名
const SessionParam = "sid"

// SessionContext 把路径中的会话 id 写入日志 Context，后续日志自动带上 session_id
func SessionContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid := c.Param(SessionParam); sid != "" {
			c.Set("session_id", sid)
			ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, sid)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
