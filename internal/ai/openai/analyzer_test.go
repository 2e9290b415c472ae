package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/splscan/internal/ai"
)

func setupTestServer(t *testing.T, status int, content string) (*httptest.Server, *[]map[string]string) {
	var received []map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		received = req.Messages

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req.Model,
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		})
	}))

	return server, &received
}

func TestOpenAIChatModel_CreateChatCompletion(t *testing.T) {
	server, received := setupTestServer(t, http.StatusOK, "false")
	defer server.Close()

	model := NewOpenAIChatModel("test-key", "", server.URL, 0.3)

	reply, err := model.CreateChatCompletion(context.Background(), []ai.Message{
		{Role: ai.RoleSystem, Content: "context"},
		{Role: ai.RoleUser, Content: "question"},
	})

	require.NoError(t, err)
	assert.Equal(t, "false", reply)
	require.Len(t, *received, 2)
	assert.Equal(t, "system", (*received)[0]["role"])
	assert.Equal(t, "context", (*received)[0]["content"])
	assert.Equal(t, "user", (*received)[1]["role"])
}

func TestOpenAIChatModel_APIError(t *testing.T) {
	server, _ := setupTestServer(t, http.StatusTooManyRequests, "")
	defer server.Close()

	model := NewOpenAIChatModel("test-key", "", server.URL, 0)

	_, err := model.CreateChatCompletion(context.Background(), []ai.Message{
		{Role: ai.RoleUser, Content: "question"},
	})

	assert.Error(t, err)
}
