//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"storybook-builder-api/internal/application/gateway"
	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/config"
	"storybook-builder-api/internal/infrastructure/imagegen"
	"storybook-builder-api/internal/infrastructure/llm"
	"storybook-builder-api/internal/interfaces/http/handler"
	"storybook-builder-api/internal/interfaces/http/router"
)

// InitializeStudio 初始化 studio-api（带路由器）
func InitializeStudio(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		StudioSet,
		router.NewStudio,
	)
	return nil, nil, nil
}

// InitializeGateway 初始化 assistant-gateway（带路由器）
func InitializeGateway(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		GatewaySet,
		router.NewGateway,
	)
	return nil, nil, nil
}

// RedisSet Redis 及依赖 Redis 的限流提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideRateLimit,
)

// StudioSet studio-api 提供者集合
var StudioSet = wire.NewSet(
	ProvideSessionStore,
	ProvideAssistant,
	ProvideExportRegistry,
	ProvideStudioOptions,
	studio.NewService,
	ProvideStudioHealth,
	handler.NewSessionHandler,
	handler.NewChatHandler,
	handler.NewPreviewHandler,
	handler.NewPageHandler,
	handler.NewExportHandler,
	wire.Struct(new(router.StudioHandlers), "*"),
)

// GatewaySet assistant-gateway 提供者集合
var GatewaySet = wire.NewSet(
	llm.NewEinoFactory,
	ProvideImageGenerator,
	wire.Bind(new(gateway.ChatModels), new(*llm.EinoFactory)),
	wire.Bind(new(gateway.ImageGenerator), new(*imagegen.Generator)),
	gateway.NewService,
	ProvideGatewayHealth,
	handler.NewGatewayHandler,
	wire.Struct(new(router.GatewayHandlers), "*"),
)
