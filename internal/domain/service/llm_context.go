package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

// WorkflowHeader studio 通过该请求头告知 gateway 本次 /chat 的用途
const WorkflowHeader = "X-Storybook-Workflow"

// 对话用途，用于指标与追踪标签
const (
	WorkflowChat    = "chat"
	WorkflowGrammar = "grammar"
	WorkflowStyle   = "style"
	WorkflowImage   = "image"
)

// NormalizeWorkflow 未知用途统一归为 chat，避免标签基数失控
func NormalizeWorkflow(workflow string) string {
	switch w := strings.ToLower(strings.TrimSpace(workflow)); w {
	case WorkflowGrammar, WorkflowStyle, WorkflowImage:
		return w
	default:
		return WorkflowChat
	}
}

func WithWorkflow(ctx context.Context, workflow string) context.Context {
	if ctx == nil {
		return nil
	}
	w := strings.TrimSpace(workflow)
	if w == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyWorkflow, w)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	p := strings.TrimSpace(provider)
	if p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyProvider, p)
}

func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithProvider(WithWorkflow(ctx, workflow), provider)
}

func WorkflowFromContext(ctx context.Context) string {
	return stringValue(ctx, llmCtxKeyWorkflow)
}

func ProviderFromContext(ctx context.Context) string {
	return stringValue(ctx, llmCtxKeyProvider)
}

func stringValue(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}
