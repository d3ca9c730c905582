package service

import (
	"context"
	"errors"

	"storybook-builder-api/internal/domain/entity"
)

var (
	// ErrAssistantUnavailable 后端不可达或返回非成功状态
	ErrAssistantUnavailable = errors.New("assistant backend unavailable")
	// ErrAssistantTripped 熔断打开，请求未发出
	ErrAssistantTripped = errors.New("assistant backend circuit open")
)

// Assistant 对话与插画后端（POST /chat 与 POST /generate-image）
//
// 实现返回的传输类错误需包装 ErrAssistantUnavailable 或 ErrAssistantTripped。
type Assistant interface {
	Chat(ctx context.Context, messages []entity.ChatMessage) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
