package ai

import (
	"context"

	"github.com/songzhibin97/splscan/internal/models"
)

// Chat roles understood by every ChatModel backend
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged chat message
type Message struct {
	Role    string
	Content string
}

// ChatModel is a chat-style completion service
type ChatModel interface {
	// CreateChatCompletion sends the ordered messages and returns the reply text
	CreateChatCompletion(ctx context.Context, messages []Message) (string, error)
}

// Enricher adds the language-model insight and honeypot verdict to analytics
type Enricher interface {
	Enrich(ctx context.Context, record models.AnalyticsRecord) (*models.EnrichmentResult, error)
}
