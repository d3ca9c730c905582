// Package imagegen 调用图像模型生成绘本插画
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storybook-builder-api/internal/config"
	"storybook-builder-api/pkg/metrics"
)

var tracer = otel.Tracer("imagegen")

// ErrNoImage 模型返回成功但没有图片
var ErrNoImage = errors.New("image model returned no image")

// Generator 基于 OpenAI Images API 的插画生成器
type Generator struct {
	client *openai.Client
	model  string
	size   string
	n      int
}

// NewGenerator 创建插画生成器
func NewGenerator(cfg *config.ImageConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	g := &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		size:   cfg.Size,
		n:      cfg.N,
	}
	if g.model == "" {
		g.model = openai.CreateImageModelDallE3
	}
	if g.size == "" {
		g.size = openai.CreateImageSize1024x1024
	}
	if g.n <= 0 {
		g.n = 1
	}
	return g
}

// Model 使用的图像模型
func (g *Generator) Model() string {
	return g.model
}

// Generate 生成插画并返回第一张图片的地址
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "image.generate", trace.WithAttributes(
		attribute.String("image.model", g.model),
		attribute.String("image.size", g.size),
		attribute.Int("image.prompt_len", len(prompt)),
	))
	defer span.End()

	start := time.Now()
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              g.n,
		Size:           g.size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	metrics.ImageGenerationDuration.WithLabelValues(g.model).Observe(time.Since(start).Seconds())

	if err == nil && (len(resp.Data) == 0 || resp.Data[0].URL == "") {
		err = ErrNoImage
	}
	if err != nil {
		metrics.ImageGenerationTotal.WithLabelValues(g.model, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("create image: %w", err)
	}

	metrics.ImageGenerationTotal.WithLabelValues(g.model, "success").Inc()
	return resp.Data[0].URL, nil
}
