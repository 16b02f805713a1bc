package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mindsoothe-backend/internal/conversation"
	"mindsoothe-backend/internal/middleware"
	"mindsoothe-backend/internal/models"
	"mindsoothe-backend/internal/services"
)

type stubGateway struct {
	replies []string
	failOn  map[int]error
	calls   [][]models.Message
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) Complete(ctx context.Context, messages []models.Message) (string, error) {
	g.calls = append(g.calls, messages)
	n := len(g.calls)
	if err, ok := g.failOn[n]; ok {
		return "", err
	}
	if n <= len(g.replies) {
		return g.replies[n-1], nil
	}
	return "ok", nil
}

func newTestHandler(gw *stubGateway) (*ChatHandler, *conversation.Store) {
	store := conversation.NewStore(conversation.Options{})
	svc := services.NewChatService(store, gw, nil, services.ChatConfig{SystemPrompt: "be kind", MaxExchanges: 5})
	return NewChatHandler(svc), store
}

func askRequest(sessionKey, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), middleware.SessionKeyKey, sessionKey))
}

func TestChatHandler_Ask_Success(t *testing.T) {
	gw := &stubGateway{replies: []string{"hi there"}}
	h, store := newTestHandler(gw)

	rr := httptest.NewRecorder()
	h.Ask(rr, askRequest("1.2.3.4", `{"message": "hello"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["response"] != "hi there" || len(result) != 1 {
		t.Fatalf("expected {\"response\": \"hi there\"}, got %v", result)
	}

	hist, ok := store.Peek("1.2.3.4")
	if !ok || hist.Len() != 3 {
		t.Fatalf("expected [system, user, assistant] for 1.2.3.4")
	}
}

func TestChatHandler_Ask_EmptyMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent field", `{}`},
		{"null field", `{"message": null}`},
		{"wrong type", `{"message": 42}`},
		{"not json", `hello?`},
		{"empty body", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &stubGateway{}
			h, _ := newTestHandler(gw)

			rr := httptest.NewRecorder()
			h.Ask(rr, askRequest("k", tc.body))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			sent := gw.calls[0]
			if last := sent[len(sent)-1]; last != (models.Message{Role: models.RoleUser, Content: ""}) {
				t.Fatalf("expected empty user turn to be forwarded, got %+v", last)
			}
		})
	}
}

func TestChatHandler_Ask_GatewayFailure(t *testing.T) {
	gw := &stubGateway{failOn: map[int]error{3: errors.New("rate limit reached for model")}}
	h, store := newTestHandler(gw)

	for _, msg := range []string{"one", "two"} {
		rr := httptest.NewRecorder()
		h.Ask(rr, askRequest("k", `{"message": "`+msg+`"}`))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.Ask(rr, askRequest("k", `{"message": "three"}`))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}

	var result map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(result["error"], "rate limit reached for model") {
		t.Fatalf("expected error description in body, got %v", result)
	}
	if _, ok := result["response"]; ok {
		t.Errorf("expected no response field on failure")
	}

	hist, _ := store.Peek("k")
	msgs := hist.Messages()
	if last := msgs[len(msgs)-1]; last.Role != models.RoleUser || last.Content != "three" {
		t.Fatalf("expected unanswered user turn to remain, got %+v", last)
	}
}

func TestChatHandler_ResetAndHistory(t *testing.T) {
	gw := &stubGateway{replies: []string{"hi there"}}
	h, _ := newTestHandler(gw)

	h.Ask(httptest.NewRecorder(), askRequest("k", `{"message": "hello"}`))

	rr := httptest.NewRecorder()
	h.History(rr, askRequest("k", ""))
	var hist models.HistoryResponse
	if err := json.NewDecoder(rr.Body).Decode(&hist); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(hist.Messages) != 2 || hist.Messages[1].Content != "hi there" {
		t.Fatalf("unexpected history: %+v", hist.Messages)
	}

	rr = httptest.NewRecorder()
	h.Reset(rr, askRequest("k", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	rr = httptest.NewRecorder()
	h.History(rr, askRequest("k", ""))
	if body := strings.TrimSpace(rr.Body.String()); body != `{"messages":[]}` {
		t.Fatalf("expected empty history after reset, got %s", body)
	}
}
