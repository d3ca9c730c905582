package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storybook-builder-api/internal/application/gateway"
	"storybook-builder-api/internal/domain/service"
)

type stubChatModel struct {
	reply    string
	err      error
	workflow string
}

func (m *stubChatModel) Generate(ctx context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.workflow = service.WorkflowFromContext(ctx)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *stubChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type stubModels struct {
	model model.BaseChatModel
}

func (s *stubModels) Get(context.Context, string) (model.BaseChatModel, error) { return s.model, nil }
func (s *stubModels) DefaultProvider() string                                  { return "openai" }

type mockImageGen struct {
	mock.Mock
}

func (m *mockImageGen) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newGatewayEngine(cm *stubChatModel, images *mockImageGen) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGatewayHandler(gateway.NewService(&stubModels{model: cm}, images))
	r := gin.New()
	r.POST("/chat", h.Chat)
	r.POST("/generate-image", h.GenerateImage)
	return r
}

func post(r *gin.Engine, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGateway_Chat(t *testing.T) {
	cm := &stubChatModel{reply: "Story Text: hi\nImage Prompt: a cat"}
	r := newGatewayEngine(cm, &mockImageGen{})

	w := post(r, "/chat", `{"messages":[{"role":"user","content":"a cat story"}]}`,
		map[string]string{service.WorkflowHeader: service.WorkflowGrammar})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"Story Text: hi\nImage Prompt: a cat"}`, w.Body.String())
	assert.Equal(t, service.WorkflowGrammar, cm.workflow)
}

func TestGateway_ChatValidation(t *testing.T) {
	r := newGatewayEngine(&stubChatModel{}, &mockImageGen{})

	w := post(r, "/chat", `{"messages":[{"role":"robot","content":"x"}]}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"detail"`)

	w = post(r, "/chat", `not json`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGateway_ChatFailure(t *testing.T) {
	r := newGatewayEngine(&stubChatModel{err: errors.New("quota exceeded")}, &mockImageGen{})

	w := post(r, "/chat", `{"messages":[{"role":"user","content":"x"}]}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "quota exceeded")
}

func TestGateway_GenerateImage(t *testing.T) {
	images := &mockImageGen{}
	images.On("Generate", mock.Anything, "a red fox").Return("https://img/fox.png", nil).Once()
	images.On("Generate", mock.Anything, "broken").Return("", errors.New("content policy")).Once()
	r := newGatewayEngine(&stubChatModel{}, images)

	w := post(r, "/generate-image", `{"prompt":"a red fox"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"image_url":"https://img/fox.png"}`, w.Body.String())

	w = post(r, "/generate-image", `{"prompt":"broken"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"content policy"}`, w.Body.String())

	w = post(r, "/generate-image", `{}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	images.AssertExpectations(t)
}
