package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mindsoothe-backend/internal/models"
)

// GeminiGateway sends conversations to Google's Gemini models.
type GeminiGateway struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiGateway(ctx context.Context, cfg Config) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(float32(cfg.Temperature))
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	return &GeminiGateway{client: client, model: model}, nil
}

func (g *GeminiGateway) Name() string { return ProviderGemini }

func (g *GeminiGateway) Close() error {
	return g.client.Close()
}

func (g *GeminiGateway) Complete(ctx context.Context, messages []models.Message) (string, error) {
	system, history, last := splitForGemini(messages)
	if last == nil {
		return "", fmt.Errorf("conversation has no turn to answer")
	}

	// The shared model is copied so concurrent sessions never race on
	// SystemInstruction.
	model := *g.model
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// splitForGemini separates the system prompt, the prior turns and the turn to
// answer.
func splitForGemini(messages []models.Message) (string, []*genai.Content, *genai.Content) {
	var system string
	var turns []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = m.Content
		case models.RoleAssistant:
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}

	if len(turns) == 0 {
		return system, nil, nil
	}
	return system, turns[:len(turns)-1], turns[len(turns)-1]
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var text strings.Builder
	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}
