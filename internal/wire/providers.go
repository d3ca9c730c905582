package wire

import (
	"context"
	"fmt"

	"storybook-builder-api/internal/application/export"
	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/config"
	"storybook-builder-api/internal/domain/repository"
	"storybook-builder-api/internal/domain/service"
	"storybook-builder-api/internal/infrastructure/backend"
	"storybook-builder-api/internal/infrastructure/imagegen"
	"storybook-builder-api/internal/infrastructure/persistence/memory"
	"storybook-builder-api/internal/infrastructure/persistence/redis"
	"storybook-builder-api/internal/interfaces/http/handler"
	"storybook-builder-api/internal/interfaces/http/middleware"
	"storybook-builder-api/internal/interfaces/http/router"
	"storybook-builder-api/pkg/logger"
)

const storeRedis = "redis"

// ProvideRedisClient 提供 Redis 客户端
//
// 未启用时返回 nil。会话存储选择 redis 时连接失败直接报错，否则降级为进程内实现。
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}

	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		if cfg.Session.Store == storeRedis {
			return nil, nil, err
		}
		logger.Warn(ctx, "redis not available, falling back to in-process limiter", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimit Redis 可用时使用滑动窗口限流，否则使用进程内令牌桶
func ProvideRateLimit(cfg *config.Config, client *redis.Client) router.Limit {
	if client != nil {
		return router.Limit{
			Limiter: redis.NewRateLimiter(client),
			KeyFunc: redis.BuildRateLimitKey,
		}
	}
	return router.Limit{
		Limiter: middleware.NewLocalRateLimiter(cfg.Security.RateLimit.Burst, 0),
	}
}

// ProvideSessionStore 按 session.store 选择会话存储
func ProvideSessionStore(ctx context.Context, cfg *config.Config, client *redis.Client) (repository.SessionStore, error) {
	switch cfg.Session.Store {
	case storeRedis:
		if client == nil {
			return nil, fmt.Errorf("session store %q requires cache.redis.enabled", storeRedis)
		}
		logger.Info(ctx, "using redis session store", "prefix", cfg.Session.KeyPrefix, "ttl", cfg.Session.TTL.String())
		return redis.NewSessionStore(client, cfg.Session.KeyPrefix, cfg.Session.TTL), nil
	case "", "memory":
		logger.Info(ctx, "using in-process session store", "ttl", cfg.Session.TTL.String())
		return memory.NewSessionStore(cfg.Session.TTL, cfg.Session.CleanupInterval), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// ProvideAssistant 提供访问 assistant gateway 的客户端
func ProvideAssistant(cfg *config.Config) service.Assistant {
	return backend.NewClient(&cfg.Backend)
}

// ProvideExportRegistry 注册 HTML 与 PDF 渲染器，配置了 pdf_font_path 时 PDF 正文使用该 TrueType 字体
func ProvideExportRegistry(cfg *config.Config) (*export.Registry, error) {
	fetcher := export.NewHTTPImageFetcher(cfg.Export.ImageFetchTimeout, cfg.Export.MaxImageBytes)
	pdf, err := export.NewPDFRenderer(fetcher, cfg.Export.PDFFontSize, cfg.Export.PDFFilename).
		WithUTF8Font(cfg.Export.PDFFontPath)
	if err != nil {
		return nil, err
	}
	return export.NewRegistry(export.NewHTMLRenderer(cfg.Export.Title), pdf), nil
}

// ProvideStudioOptions 提供会话服务配置
func ProvideStudioOptions(cfg *config.Config) studio.Options {
	return studio.Options{ChatPlaceholder: cfg.Session.ChatPlaceholder}
}

// ProvideStudioHealth 会话存储为必需项，Redis 为可选项
func ProvideStudioHealth(cfg *config.Config, svc *studio.Service, client *redis.Client) *handler.HealthHandler {
	h := handler.NewHealthHandler(cfg.App.Version).
		Require("sessions", handler.CheckerFunc(func(ctx context.Context) error {
			_, err := svc.SessionCount(ctx)
			return err
		}))
	if client != nil {
		h.Observe("redis", client)
	}
	return h
}

// ProvideImageGenerator 提供插画生成器
func ProvideImageGenerator(cfg *config.Config) *imagegen.Generator {
	return imagegen.NewGenerator(&cfg.Image)
}

// ProvideGatewayHealth gateway 仅观察 Redis
func ProvideGatewayHealth(cfg *config.Config, client *redis.Client) *handler.HealthHandler {
	h := handler.NewHealthHandler(cfg.App.Version)
	if client != nil {
		h.Observe("redis", client)
	}
	return h
}
