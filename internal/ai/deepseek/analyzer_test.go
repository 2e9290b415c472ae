package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/splscan/internal/ai"
)

func setupTestServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) (*httptest.Server, *DeepSeekChatModel) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		handler(w, req)
	}))

	model := NewDeepSeekChatModel("test-key", "", server.URL, 0.3, resty.NewWithClient(server.Client()))
	return server, model
}

func TestDeepSeekChatModel_CreateChatCompletion(t *testing.T) {
	server, model := setupTestServer(t, func(w http.ResponseWriter, req chatRequest) {
		assert.Equal(t, defaultModel, req.Model)
		assert.Equal(t, 0.3, req.Temperature)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, ai.RoleSystem, req.Messages[0].Role)
		assert.Equal(t, ai.RoleUser, req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"true"}}]}`))
	})
	defer server.Close()

	reply, err := model.CreateChatCompletion(context.Background(), []ai.Message{
		{Role: ai.RoleSystem, Content: "context"},
		{Role: ai.RoleUser, Content: "question"},
	})

	require.NoError(t, err)
	assert.Equal(t, "true", reply)
}

func TestDeepSeekChatModel_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`},
		{name: "api error body", status: http.StatusOK, body: `{"error":{"message":"overloaded"}}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "invalid json", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, model := setupTestServer(t, func(w http.ResponseWriter, req chatRequest) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			defer server.Close()

			_, err := model.CreateChatCompletion(context.Background(), []ai.Message{
				{Role: ai.RoleUser, Content: "question"},
			})
			assert.Error(t, err)
		})
	}
}
