package deepseek

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/songzhibin97/splscan/internal/ai"
)

const (
	defaultAPIEndpoint = "https://api.deepseek.com/v1"
	defaultModel       = "deepseek-chat"
)

// DeepSeekChatModel implements ai.ChatModel using DeepSeek
type DeepSeekChatModel struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	client      *resty.Client
}

// NewDeepSeekChatModel creates a new DeepSeek chat model instance
func NewDeepSeekChatModel(apiKey, model, endpoint string, temperature float64, client *resty.Client) *DeepSeekChatModel {
	if model == "" {
		model = defaultModel
	}
	if endpoint == "" {
		endpoint = defaultAPIEndpoint
	}

	return &DeepSeekChatModel{
		apiKey:      apiKey,
		endpoint:    endpoint,
		model:       model,
		temperature: temperature,
		client:      client,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CreateChatCompletion sends a request to the DeepSeek API
func (m *DeepSeekChatModel) CreateChatCompletion(ctx context.Context, messages []ai.Message) (string, error) {
	reqBody := chatRequest{
		Model:       m.model,
		Messages:    make([]chatMessage, 0, len(messages)),
		Temperature: m.temperature,
	}
	for _, msg := range messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(m.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(fmt.Sprintf("%s/chat/completions", m.endpoint))
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("api error: status=%d, body=%s", resp.StatusCode(), string(body))
	}

	if !json.Valid(body) {
		return "", fmt.Errorf("api returned invalid json response")
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("api error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from api")
	}

	return chatResp.Choices[0].Message.Content, nil
}
