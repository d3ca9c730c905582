package studio

import (
	"errors"

	"storybook-builder-api/internal/application/export"
	"storybook-builder-api/internal/application/sequencer"
	"storybook-builder-api/internal/domain/repository"
)

var (
	ErrSessionNotFound = repository.ErrSessionNotFound
	ErrIncompletePage  = sequencer.ErrIncompletePage
	ErrInvalidOrder    = sequencer.ErrInvalidOrder
	ErrEmptyBook       = export.ErrEmptyBook

	// ErrMissingInput 必填输入为空，请求未发往后端
	ErrMissingInput = errors.New("missing required input")
	// ErrActionInFlight 同一会话的同类请求尚未完成
	ErrActionInFlight = errors.New("action already in progress")
	ErrTurnNotFound   = errors.New("turn not found")
	// ErrNotInterpretable 只有成功的助手回复可以解析
	ErrNotInterpretable = errors.New("only assistant replies can be interpreted")
	ErrPageNotFound     = errors.New("page not found")

	// 以下错误与 service.ErrAssistantUnavailable / ErrAssistantTripped 一同包装返回
	ErrChatFailed    = errors.New("could not reach assistant")
	ErrGrammarFailed = errors.New("could not correct grammar")
	ErrStyleFailed   = errors.New("could not change style")
	ErrImageFailed   = errors.New("image generation failed")
)
