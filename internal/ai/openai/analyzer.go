package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/songzhibin97/splscan/internal/ai"
)

const defaultModel = "gpt-4o-mini"

// OpenAIChatModel implements ai.ChatModel using OpenAI
type OpenAIChatModel struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIChatModel creates a new OpenAI chat model. baseURL may point at
// any OpenAI-compatible endpoint; empty keeps the official API.
func NewOpenAIChatModel(apiKey, model, baseURL string, temperature float32) *OpenAIChatModel {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &OpenAIChatModel{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// CreateChatCompletion implements ai.ChatModel
func (m *OpenAIChatModel) CreateChatCompletion(ctx context.Context, messages []ai.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: m.temperature,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    toRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}

func toRole(role string) string {
	switch role {
	case ai.RoleSystem:
		return openai.ChatMessageRoleSystem
	case ai.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
