package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowProvider(t *testing.T) {
	ctx := WithWorkflowProvider(context.Background(), " chat ", "openai")
	assert.Equal(t, "chat", WorkflowFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))

	bare := context.Background()
	assert.Equal(t, "unknown", WorkflowFromContext(bare))
	assert.Equal(t, "unknown", ProviderFromContext(WithProvider(bare, "  ")))
}

func TestNormalizeWorkflow(t *testing.T) {
	assert.Equal(t, WorkflowGrammar, NormalizeWorkflow(" Grammar "))
	assert.Equal(t, WorkflowStyle, NormalizeWorkflow("style"))
	assert.Equal(t, WorkflowChat, NormalizeWorkflow(""))
	assert.Equal(t, WorkflowChat, NormalizeWorkflow("drop table"))
}
