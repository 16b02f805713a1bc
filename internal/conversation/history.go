package conversation

import (
	"sync"

	"mindsoothe-backend/internal/models"
)

// DefaultMaxExchanges is the number of user/assistant exchanges kept after the
// system prompt.
const DefaultMaxExchanges = 5

// History is the ordered message list of one session. Element 0 is always the
// system prompt.
type History struct {
	// turn serializes ask cycles for the session, so turns are appended in
	// the order requests acquired it.
	turn sync.Mutex

	mu       sync.RWMutex
	messages []models.Message
}

func newHistory(systemPrompt string) *History {
	return &History{
		messages: []models.Message{{Role: models.RoleSystem, Content: systemPrompt}},
	}
}

// Lock gives the caller exclusive use of the session until Unlock.
func (h *History) Lock() { h.turn.Lock() }

func (h *History) Unlock() { h.turn.Unlock() }

// Append adds a message at the end of the history. Role must be one of the
// models.Role* constants.
func (h *History) Append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, models.Message{Role: role, Content: content})
}

// Trim drops the oldest turns so at most maxExchanges exchanges follow the
// system prompt.
func (h *History) Trim(maxExchanges int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = Trim(h.messages, maxExchanges)
}

// Messages returns a copy of the history.
func (h *History) Messages() []models.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Trim keeps messages[0] plus the most recent 2*maxExchanges messages. A
// history already within bounds is returned unchanged. messages[0] must be the
// system prompt.
func Trim(messages []models.Message, maxExchanges int) []models.Message {
	if maxExchanges < 0 {
		maxExchanges = 0
	}
	keep := 2 * maxExchanges
	if len(messages) <= 1+keep {
		return messages
	}

	trimmed := make([]models.Message, 0, 1+keep)
	trimmed = append(trimmed, messages[0])
	return append(trimmed, messages[len(messages)-keep:]...)
}
