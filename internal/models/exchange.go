package models

import (
	"time"

	"github.com/google/uuid"
)

// Exchange is one answered user turn, as written to the exchange archive.
type Exchange struct {
	ID               uuid.UUID `json:"id"`
	SessionKey       string    `json:"session_key"`
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	Provider         string    `json:"provider"`
	LatencyMS        int64     `json:"latency_ms"`
	CreatedAt        time.Time `json:"created_at"`
}
