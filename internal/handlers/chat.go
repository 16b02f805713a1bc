package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"mindsoothe-backend/internal/middleware"
	"mindsoothe-backend/internal/models"
)

type chatService interface {
	Ask(ctx context.Context, sessionKey, userText string) (string, error)
	Reset(sessionKey string) bool
	History(sessionKey string) ([]models.Message, bool)
}

type ChatHandler struct {
	chat chatService
}

func NewChatHandler(chat chatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	req := DecodeAskRequest(r)
	sessionKey := middleware.GetSessionKey(r.Context())

	reply, err := h.chat.Ask(r.Context(), sessionKey, req.Message)
	if err != nil {
		log.Printf("Error: ask failed for session %s (request %s): %v", sessionKey, r.Header.Get(middleware.RequestIDHeader), err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.AskResponse{Response: reply})
}

func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.chat.Reset(middleware.GetSessionKey(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	msgs, _ := h.chat.History(middleware.GetSessionKey(r.Context()))
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, models.HistoryResponse{Messages: msgs})
}

// DecodeAskRequest reads the ask payload. A missing or malformed body, or a
// missing message field, yields an empty message.
func DecodeAskRequest(r *http.Request) models.AskRequest {
	var req models.AskRequest
	if r.Body == nil {
		return req
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.AskRequest{}
	}
	return req
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
