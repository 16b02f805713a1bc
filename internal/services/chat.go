package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"mindsoothe-backend/internal/conversation"
	"mindsoothe-backend/internal/gateway"
	"mindsoothe-backend/internal/models"
)

const archiveTimeout = 5 * time.Second

// ExchangeRecorder receives every answered turn. Implementations live in the
// repository package.
type ExchangeRecorder interface {
	Record(ctx context.Context, e *models.Exchange) error
}

type ChatConfig struct {
	SystemPrompt string
	MaxExchanges int
}

// ChatService runs one ask/respond cycle per call against the session's
// history.
type ChatService struct {
	store        *conversation.Store
	gateway      gateway.Gateway
	recorder     ExchangeRecorder
	systemPrompt string
	maxExchanges int
}

// NewChatService wires the store and gateway together. recorder may be nil.
func NewChatService(store *conversation.Store, gw gateway.Gateway, recorder ExchangeRecorder, cfg ChatConfig) *ChatService {
	if cfg.MaxExchanges <= 0 {
		cfg.MaxExchanges = conversation.DefaultMaxExchanges
	}
	return &ChatService{
		store:        store,
		gateway:      gw,
		recorder:     recorder,
		systemPrompt: cfg.SystemPrompt,
		maxExchanges: cfg.MaxExchanges,
	}
}

// Ask appends userText to the session, asks the gateway for a reply and
// appends that too. On gateway failure the user turn stays in the history
// and is sent again as context with the next message.
func (s *ChatService) Ask(ctx context.Context, sessionKey, userText string) (string, error) {
	history := s.store.Acquire(sessionKey, s.systemPrompt)
	defer s.store.Release(sessionKey, history)

	reply, latency, err := s.exchange(ctx, history, userText)
	if err != nil {
		return "", fmt.Errorf("%s gateway: %w", s.gateway.Name(), err)
	}

	s.record(ctx, &models.Exchange{
		SessionKey:       sessionKey,
		UserMessage:      userText,
		AssistantMessage: reply,
		Provider:         s.gateway.Name(),
		LatencyMS:        latency.Milliseconds(),
	})

	return reply, nil
}

// exchange runs one turn while holding the session's turn lock.
func (s *ChatService) exchange(ctx context.Context, history *conversation.History, userText string) (string, time.Duration, error) {
	history.Lock()
	defer history.Unlock()

	history.Append(models.RoleUser, userText)
	history.Trim(s.maxExchanges)

	start := time.Now()
	reply, err := s.gateway.Complete(ctx, history.Messages())
	if err != nil {
		return "", 0, err
	}
	latency := time.Since(start)

	history.Append(models.RoleAssistant, reply)
	history.Trim(s.maxExchanges)
	return reply, latency, nil
}

// Reset forgets the session's history. It reports whether there was one.
func (s *ChatService) Reset(sessionKey string) bool {
	return s.store.Delete(sessionKey)
}

// History returns the session's user and assistant turns, without the system
// prompt.
func (s *ChatService) History(sessionKey string) ([]models.Message, bool) {
	history, ok := s.store.Peek(sessionKey)
	if !ok {
		return nil, false
	}
	return history.Messages()[1:], true
}

func (s *ChatService) record(ctx context.Context, e *models.Exchange) {
	if s.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	if err := s.recorder.Record(ctx, e); err != nil {
		log.Printf("exchange archive: failed to record exchange for session %s: %v", e.SessionKey, err)
	}
}
