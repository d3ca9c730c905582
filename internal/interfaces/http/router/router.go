// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storybook-builder-api/internal/config"
	"storybook-builder-api/internal/interfaces/http/handler"
	"storybook-builder-api/internal/interfaces/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
	scope  string
	limit  Limit
	health *handler.HealthHandler
}

// Limit 限流依赖；Limiter 为 nil 时不限流
type Limit struct {
	Limiter middleware.RateLimiter
	KeyFunc middleware.KeyFunc
}

// StudioHandlers studio-api 的处理器集合
type StudioHandlers struct {
	Health  *handler.HealthHandler
	Session *handler.SessionHandler
	Chat    *handler.ChatHandler
	Preview *handler.PreviewHandler
	Page    *handler.PageHandler
	Export  *handler.ExportHandler
}

// GatewayHandlers assistant-gateway 的处理器集合
type GatewayHandlers struct {
	Health  *handler.HealthHandler
	Gateway *handler.GatewayHandler
}

func newRouter(cfg *config.Config, scope string, limit Limit, health *handler.HealthHandler) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
		scope:  scope,
		limit:  limit,
		health: health,
	}
	r.setupMiddleware()
	r.setupSystemRoutes()
	return r
}

// NewStudio 创建 studio-api 路由器
func NewStudio(cfg *config.Config, limit Limit, h StudioHandlers) *Router {
	r := newRouter(cfg, "studio", limit, h.Health)
	RegisterV1Routes(r.engine.Group("/v1"), h)
	return r
}

// NewGateway 创建 assistant-gateway 路由器
func NewGateway(cfg *config.Config, limit Limit, h GatewayHandlers) *Router {
	r := newRouter(cfg, "gateway", limit, h.Health)
	RegisterGatewayRoutes(r.engine, h)
	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name + "-" + r.scope))
	}
	r.engine.Use(middleware.TraceContext())

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.AccessLog("/health", "/live", "/ready", r.cfg.Observability.Metrics.Path))

	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
		Scope:             r.scope,
	}, r.limit.Limiter, r.limit.KeyFunc))
}

// setupSystemRoutes 健康检查与指标端点
func (r *Router) setupSystemRoutes() {
	health := r.health
	if health == nil {
		health = handler.NewHealthHandler(r.cfg.App.Version)
	}

	r.engine.GET("/health", health.Health)
	r.engine.GET("/ready", health.Ready)
	r.engine.GET("/live", health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
}
