package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"storybook-builder-api/pkg/logger"
)

// AccessLog 请求访问日志，skipPaths 中的路径（健康检查、指标）不记录
func AccessLog(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		if c.Writer.Status() >= 500 {
			logger.Warn(ctx, "api request", args...)
			return
		}
		logger.Info(ctx, "api request", args...)
	}
}
