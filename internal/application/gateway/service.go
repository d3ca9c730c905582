// Package gateway 实现 assistant gateway 的两个端点：对话与插画生成
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/service"
	"storybook-builder-api/pkg/logger"
)

// SystemPrompt 每次 /chat 请求前置的系统提示词，约定回复为 Story Text / Image Prompt 两段
const SystemPrompt = `You are a helpful, creative book assistant for families and educators. When asked to generate a story page, always reply in this format:

Story Text:
<the text that should appear in the book, for children to read>

Image Prompt:
<a vivid, visual description for DALL·E, including any text to overlay, e.g. 'A little girl in a lavender dress, running through a field at sunset, with the words: "You are brave."'>

Do not include any other commentary or instructions. Only output these two sections, clearly labeled. The image prompt should be suitable for DALL·E 3 and include overlay text if appropriate.`

// ErrEmptyReply 模型没有返回内容
var ErrEmptyReply = errors.New("empty llm response")

// ChatModels 按提供商获取 ChatModel，由 llm.EinoFactory 实现
type ChatModels interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
	DefaultProvider() string
}

// ImageGenerator 插画生成，由 imagegen.Generator 实现
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service gateway 应用服务，同时满足 service.Assistant
type Service struct {
	models ChatModels
	images ImageGenerator
}

var _ service.Assistant = (*Service)(nil)

// NewService 创建 gateway 服务
func NewService(models ChatModels, images ImageGenerator) *Service {
	return &Service{models: models, images: images}
}

// Chat 在调用方消息前加上系统提示词并返回模型回复
func (s *Service) Chat(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	provider := s.models.DefaultProvider()
	ctx = service.WithWorkflowProvider(ctx, service.NormalizeWorkflow(service.WorkflowFromContext(ctx)), provider)

	chatModel, err := s.models.Get(ctx, provider)
	if err != nil {
		return "", err
	}

	out, err := chatModel.Generate(ctx, BuildMessages(messages))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if out == nil {
		return "", ErrEmptyReply
	}

	logger.Debug(ctx, "chat completion finished",
		"workflow", service.WorkflowFromContext(ctx),
		"messages", len(messages)+1,
		"reply_len", len(out.Content),
	)
	return out.Content, nil
}

// GenerateImage 按提示词生成插画
func (s *Service) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}
	return s.images.Generate(ctx, prompt)
}

// BuildMessages 系统提示词 + 调用方消息，调用方自带的 system 消息原样保留
func BuildMessages(messages []entity.ChatMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages)+1)
	out = append(out, schema.SystemMessage(SystemPrompt))
	for _, m := range messages {
		switch m.Role {
		case entity.RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		case entity.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}
