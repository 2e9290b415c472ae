package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/songzhibin97/splscan/internal/ai"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 2048
)

// AnthropicChatModel implements ai.ChatModel using the Anthropic Messages API
type AnthropicChatModel struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicChatModel creates a new Anthropic chat model. System messages
// are sent as the request's system prompt.
func NewAnthropicChatModel(apiKey, model, baseURL string, temperature float64) *AnthropicChatModel {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = defaultModel
	}

	return &AnthropicChatModel{
		client:      sdk.NewClient(opts...),
		model:       model,
		maxTokens:   defaultMaxTokens,
		temperature: temperature,
	}
}

// CreateChatCompletion implements ai.ChatModel
func (m *AnthropicChatModel) CreateChatCompletion(ctx context.Context, messages []ai.Message) (string, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(m.model),
		MaxTokens:   m.maxTokens,
		Temperature: sdk.Float(m.temperature),
	}

	for _, msg := range messages {
		block := sdk.NewTextBlock(msg.Content)
		switch msg.Role {
		case ai.RoleSystem:
			params.System = append(params.System, sdk.TextBlockParam{Text: msg.Content})
		case ai.RoleAssistant:
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(block))
		default:
			params.Messages = append(params.Messages, sdk.NewUserMessage(block))
		}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no text response from anthropic")
	}

	return text.String(), nil
}
