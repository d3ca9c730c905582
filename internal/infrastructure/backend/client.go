// Package backend 实现 studio 访问 assistant gateway 的 HTTP 客户端
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storybook-builder-api/internal/config"
	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/service"
	"storybook-builder-api/pkg/logger"
	"storybook-builder-api/pkg/metrics"
)

const (
	chatEndpoint  = "/chat"
	imageEndpoint = "/generate-image"

	// maxErrorBody 错误响应体最多读取的字节数
	maxErrorBody = 4 << 10
)

// StatusError 后端返回了非 2xx 状态
type StatusError struct {
	Endpoint   string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s returned %d", e.Endpoint, e.StatusCode)
}

type chatRequest struct {
	Messages []entity.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

type imageResponse struct {
	ImageURL string `json:"image_url"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Client 实现 service.Assistant
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ service.Assistant = (*Client)(nil)

// NewClient 创建后端客户端
func NewClient(cfg *config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker("assistant-backend", cfg.Breaker)
	}
	return c
}

func newBreaker(name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	metrics.BackendBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BackendBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn(context.Background(), "backend circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// 4xx 是请求本身的问题，不计入熔断
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})
}

// Chat 发送完整对话历史，返回助手回复
func (c *Client) Chat(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	var out chatResponse
	if err := c.post(ctx, chatEndpoint, chatRequest{Messages: messages}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// GenerateImage 生成插画，返回图片地址
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var out imageResponse
	if err := c.post(ctx, imageEndpoint, imageRequest{Prompt: prompt}, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	start := time.Now()

	call := func() (any, error) {
		return nil, c.do(ctx, endpoint, in, out)
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(call)
	} else {
		_, err = call()
	}

	metrics.BackendCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.BackendCallTotal.WithLabelValues(endpoint, callStatus(err)).Inc()

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s: %w", service.ErrAssistantTripped, endpoint, err)
	default:
		return fmt.Errorf("%w: %w", service.ErrAssistantUnavailable, err)
	}
}

func (c *Client) do(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if wf := service.WorkflowFromContext(ctx); wf != "unknown" {
		req.Header.Set(service.WorkflowHeader, wf)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Detail != "" {
			se.Detail = er.Detail
		} else {
			se.Detail = strings.TrimSpace(string(raw))
		}
		return se
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func callStatus(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "rejected"
	}
	var se *StatusError
	if errors.As(err, &se) {
		return strconv.Itoa(se.StatusCode)
	}
	return "error"
}
