package models

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn in a conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// AskRequest is the payload sent to the ask endpoint.
type AskRequest struct {
	Message string `json:"message"`
}

// AskResponse carries the generated reply.
type AskResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HistoryResponse struct {
	Messages []Message `json:"messages"`
}
