package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-builder-api/internal/config"
	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/service"
)

func newTestClient(url string, breaker bool) *Client {
	return NewClient(&config.BackendConfig{
		BaseURL: url + "/",
		Timeout: 5 * time.Second,
		Breaker: config.BreakerConfig{
			Enabled:      breaker,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			MinRequests:  2,
			FailureRatio: 0.5,
		},
	})
}

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, service.WorkflowGrammar, r.Header.Get(service.WorkflowHeader))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, entity.RoleUser, req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(chatResponse{Reply: "hello back"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, true)
	ctx := service.WithWorkflow(context.Background(), service.WorkflowGrammar)

	reply, err := client.Chat(ctx, []entity.ChatMessage{{Role: entity.RoleUser, Content: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
}

func TestClient_GenerateImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-image", r.URL.Path)
		assert.Empty(t, r.Header.Get(service.WorkflowHeader))

		var req imageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a fox", req.Prompt)

		_ = json.NewEncoder(w).Encode(imageResponse{ImageURL: "https://img/fox.png"})
	}))
	defer srv.Close()

	url, err := newTestClient(srv.URL, false).GenerateImage(context.Background(), "a fox")
	require.NoError(t, err)
	assert.Equal(t, "https://img/fox.png", url)
}

func TestClient_ServerErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Detail: "model overloaded"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, false).GenerateImage(context.Background(), "a fox")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAssistantUnavailable)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "model overloaded", se.Detail)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, false).Chat(context.Background(), nil)
	assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Chat(ctx, nil)
		assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
	}

	_, err := client.Chat(ctx, nil)
	assert.ErrorIs(t, err, service.ErrAssistantTripped)
	assert.Equal(t, 2, calls)
}

func TestClient_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, true)
	for i := 0; i < 4; i++ {
		_, err := client.Chat(context.Background(), nil)
		assert.ErrorIs(t, err, service.ErrAssistantUnavailable)
		assert.NotErrorIs(t, err, service.ErrAssistantTripped)
	}
}
