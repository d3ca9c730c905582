package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storybook-builder-api/internal/application/export"
	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/service"
	"storybook-builder-api/internal/infrastructure/persistence/memory"
	"storybook-builder-api/internal/interfaces/http/middleware"
)

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Chat(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *mockAssistant) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type studioEnv struct {
	engine    *gin.Engine
	svc       *studio.Service
	assistant *mockAssistant
}

func newStudioEnv(t *testing.T) *studioEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	assistant := &mockAssistant{}
	svc := studio.NewService(
		memory.NewSessionStore(time.Hour, time.Hour),
		assistant,
		export.NewRegistry(export.NewHTMLRenderer("Test Book")),
		studio.Options{ChatPlaceholder: "Start your story!"},
	)

	sessions := NewSessionHandler(svc)
	chat := NewChatHandler(svc)
	preview := NewPreviewHandler(svc)
	pages := NewPageHandler(svc)
	exp := NewExportHandler(svc)

	r := gin.New()
	r.POST("/v1/interpret", chat.Interpret)
	r.POST("/v1/sessions", sessions.CreateSession)
	g := r.Group("/v1/sessions/:"+middleware.SessionParam, middleware.SessionContext())
	g.GET("", sessions.GetSession)
	g.DELETE("", sessions.DeleteSession)
	g.GET("/turns", chat.ListTurns)
	g.POST("/messages", chat.SendMessage)
	g.POST("/turns/:idx/interpret", chat.InterpretTurn)
	g.PUT("/preview", preview.UpdatePreview)
	g.POST("/preview/grammar", preview.CorrectGrammar)
	g.POST("/preview/image", preview.GenerateImage)
	g.GET("/pages", pages.ListPages)
	g.POST("/pages", pages.SavePage)
	g.DELETE("/pages/:pid", pages.RemovePage)
	g.POST("/pages/move", pages.MovePage)
	g.PUT("/pages/order", pages.ReorderPages)
	g.GET("/export", exp.Export)

	t.Cleanup(func() { assistant.AssertExpectations(t) })
	return &studioEnv{engine: r, svc: svc, assistant: assistant}
}

func (e *studioEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *studioEnv) createSession(t *testing.T) string {
	t.Helper()
	w := e.do(http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID          string `json:"id"`
			Placeholder string `json:"placeholder"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "Start your story!", resp.Data.Placeholder)
	return resp.Data.ID
}

// addPage 走完整流程：编辑预览、生成插画、保存
func (e *studioEnv) addPage(t *testing.T, sid, text string) string {
	t.Helper()
	w := e.do(http.MethodPut, "/v1/sessions/"+sid+"/preview", map[string]string{"text": text, "image_prompt": "prompt " + text})
	require.Equal(t, http.StatusOK, w.Code)

	e.assistant.On("GenerateImage", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasSuffix(p, "prompt "+text)
	})).Return("https://img/"+text+".png", nil).Once()
	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/preview/image", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/pages", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Page struct {
				ID string `json:"id"`
			} `json:"page"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Page.ID
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.ErrorCode
}

func TestSession_NotFound(t *testing.T) {
	e := newStudioEnv(t)

	w := e.do(http.MethodGet, "/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "3001", errorCode(t, w))
}

func TestSession_CreateGetDelete(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	w := e.do(http.MethodGet, "/v1/sessions/"+sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":[]`)

	w = e.do(http.MethodDelete, "/v1/sessions/"+sid, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(http.MethodGet, "/v1/sessions/"+sid, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChat_SendMessageAndInterpret(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	e.assistant.On("Chat", mock.Anything, mock.Anything).
		Return("Story Text: Pip the fox wakes up.\nImage Prompt: A small fox in a meadow", nil).Once()

	w := e.do(http.MethodPost, "/v1/sessions/"+sid+"/messages", map[string]string{"message": "a fox story"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"index":1`)
	assert.Contains(t, w.Body.String(), `"role":"assistant"`)

	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/turns/1/interpret", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Story   string `json:"story"`
			Outcome string `json:"outcome"`
			Preview struct {
				Text        string `json:"text"`
				ImagePrompt string `json:"image_prompt"`
			} `json:"preview"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Pip the fox wakes up.", resp.Data.Story)
	assert.Equal(t, "Pip the fox wakes up.", resp.Data.Preview.Text)
	assert.Equal(t, "A small fox in a meadow", resp.Data.Preview.ImagePrompt)

	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/turns/0/interpret", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/turns/x/interpret", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/turns/9/interpret", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChat_BackendDown(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	e.assistant.On("Chat", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("%w: dial tcp", service.ErrAssistantUnavailable)).Once()

	w := e.do(http.MethodPost, "/v1/sessions/"+sid+"/messages", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "4004", errorCode(t, w))

	w = e.do(http.MethodGet, "/v1/sessions/"+sid+"/turns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), entity.FailedReplyMarker)
}

func TestChat_BreakerOpen(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	e.assistant.On("Chat", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("%w: chat", service.ErrAssistantTripped)).Once()

	w := e.do(http.MethodPost, "/v1/sessions/"+sid+"/messages", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5006", errorCode(t, w))
}

func TestChat_EmptyMessage(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	w := e.do(http.MethodPost, "/v1/sessions/"+sid+"/messages", map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInterpret_Stateless(t *testing.T) {
	e := newStudioEnv(t)

	w := e.do(http.MethodPost, "/v1/interpret", map[string]string{
		"text": "Story Text: Once upon a time.\nImage Prompt: A castle",
		"mode": "strict",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"story":"Once upon a time."`)
	assert.NotContains(t, w.Body.String(), `"preview"`)

	w = e.do(http.MethodPost, "/v1/interpret", map[string]string{"text": "x", "mode": "fuzzy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreview_GrammarRequiresText(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	w := e.do(http.MethodPost, "/v1/sessions/"+sid+"/preview/grammar", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "1001", errorCode(t, w))
}

func TestPages_SaveIncomplete(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	w := e.do(http.MethodPut, "/v1/sessions/"+sid+"/preview", map[string]string{"text": "only text"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/pages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "4001", errorCode(t, w))
}

func TestPages_MoveReorderRemove(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	a := e.addPage(t, sid, "a")
	b := e.addPage(t, sid, "b")
	c := e.addPage(t, sid, "c")

	w := e.do(http.MethodPost, "/v1/sessions/"+sid+"/pages/move", map[string]any{
		"dragged_id": c, "target_id": a, "insert_before": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"moved":true`)
	assert.Equal(t, []string{c, a, b}, pageIDs(t, e, sid))

	w = e.do(http.MethodPost, "/v1/sessions/"+sid+"/pages/move", map[string]any{
		"dragged_id": "ghost", "target_id": a,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"moved":false`)

	w = e.do(http.MethodPut, "/v1/sessions/"+sid+"/pages/order", map[string]any{"page_ids": []string{a, b}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/v1/sessions/"+sid+"/pages/order", map[string]any{"page_ids": []string{b, c, a}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{b, c, a}, pageIDs(t, e, sid))

	w = e.do(http.MethodDelete, "/v1/sessions/"+sid+"/pages/"+c, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{b, a}, pageIDs(t, e, sid))

	w = e.do(http.MethodDelete, "/v1/sessions/"+sid+"/pages/"+c, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func pageIDs(t *testing.T, e *studioEnv, sid string) []string {
	t.Helper()
	w := e.do(http.MethodGet, "/v1/sessions/"+sid+"/pages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Pages []struct {
				ID string `json:"id"`
			} `json:"pages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	ids := make([]string, 0, len(resp.Data.Pages))
	for _, p := range resp.Data.Pages {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestExport(t *testing.T) {
	e := newStudioEnv(t)
	sid := e.createSession(t)

	w := e.do(http.MethodGet, "/v1/sessions/"+sid+"/export", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "4002", errorCode(t, w))

	e.addPage(t, sid, "first")
	e.addPage(t, sid, "second")

	w = e.do(http.MethodGet, "/v1/sessions/"+sid+"/export?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Less(t, strings.Index(body, "first"), strings.Index(body, "second"))

	w = e.do(http.MethodGet, "/v1/sessions/"+sid+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/v1/sessions/"+sid+"/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth_Ready(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler("v1.0.0").
		Require("sessions", CheckerFunc(func(context.Context) error { return nil })).
		Observe("redis", CheckerFunc(func(context.Context) error { return fmt.Errorf("down") }))

	r := gin.New()
	r.GET("/ready", h.Ready)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)

	h.Require("backend", CheckerFunc(func(context.Context) error { return fmt.Errorf("refused") }))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"not_ready"`)
}
