// Package gateway wraps the hosted language-model providers behind a single
// chat completion call.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"mindsoothe-backend/internal/models"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrEmptyResponse is returned when the provider answers without any
// generated text.
var ErrEmptyResponse = errors.New("provider returned no generated text")

// Gateway turns an ordered conversation into the next assistant message.
type Gateway interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
	Name() string
}

// Config holds the generation settings shared by every provider.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// New builds the gateway for cfg.Provider.
func New(ctx context.Context, cfg Config) (Gateway, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewOpenAIGateway(cfg), nil
	case ProviderGemini:
		return NewGeminiGateway(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
}
