package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mindsoothe-backend/internal/conversation"
	"mindsoothe-backend/internal/handlers"
	"mindsoothe-backend/internal/middleware"
	"mindsoothe-backend/internal/models"
	"mindsoothe-backend/internal/services"
	"mindsoothe-backend/internal/websocket"
)

type scriptedGateway struct {
	replies map[string]string
}

func (g *scriptedGateway) Name() string { return "scripted" }

func (g *scriptedGateway) Complete(ctx context.Context, messages []models.Message) (string, error) {
	last := messages[len(messages)-1].Content
	if reply, ok := g.replies[last]; ok {
		return reply, nil
	}
	return "", errors.New("no scripted reply for " + last)
}

func newTestRouter(t *testing.T, mode string) (http.Handler, *conversation.Store) {
	t.Helper()

	sessions, err := middleware.NewSessionResolver(mode, "s3cret", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := conversation.NewStore(conversation.Options{})
	gw := &scriptedGateway{replies: map[string]string{"hello": "hi there", "again": "welcome back"}}
	svc := services.NewChatService(store, gw, nil, services.ChatConfig{SystemPrompt: "be kind"})

	return New(sessions, handlers.NewChatHandler(svc), websocket.NewHub(svc), ""), store
}

func post(h http.Handler, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_AskByAddress(t *testing.T) {
	h, store := newTestRouter(t, middleware.SessionModeAddress)

	rr := post(h, "/ask", `{"message": "hello"}`, func(r *http.Request) {
		r.RemoteAddr = "1.2.3.4:40000"
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp models.AskResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Response != "hi there" {
		t.Fatalf("expected 'hi there', got %q", resp.Response)
	}

	hist, ok := store.Peek("1.2.3.4")
	if !ok || hist.Len() != 3 {
		t.Fatalf("expected session keyed by client address")
	}
}

func TestRouter_AskUsesForwardedAddress(t *testing.T) {
	h, store := newTestRouter(t, middleware.SessionModeAddress)

	post(h, "/ask", `{"message": "hello"}`, func(r *http.Request) {
		r.RemoteAddr = "10.0.0.1:40000"
		r.Header.Set("X-Forwarded-For", "1.2.3.4")
	})

	if _, ok := store.Peek("1.2.3.4"); !ok {
		t.Fatalf("expected session keyed by forwarded address")
	}
}

func TestRouter_AskByToken(t *testing.T) {
	h, store := newTestRouter(t, middleware.SessionModeToken)

	first := post(h, "/ask", `{"message": "hello"}`, nil)
	cookies := first.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}

	second := post(h, "/ask", `{"message": "again"}`, func(r *http.Request) {
		r.AddCookie(cookies[0])
	})
	if second.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", second.Code)
	}
	if store.Len() != 1 {
		t.Fatalf("expected both asks to share one session, got %d sessions", store.Len())
	}
}

func TestRouter_GatewayFailure(t *testing.T) {
	h, _ := newTestRouter(t, middleware.SessionModeAddress)

	rr := post(h, "/ask", `{"message": "unknown"}`, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if !strings.Contains(resp.Error, "no scripted reply") {
		t.Fatalf("expected error description, got %q", resp.Error)
	}
}

func TestRouter_StaticRoutes(t *testing.T) {
	h, _ := newTestRouter(t, middleware.SessionModeAddress)

	for _, path := range []string{"/", "/health", "/static/js/script.js", "/history"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: expected status 200, got %d", path, rr.Code)
		}
	}
}

func TestRouter_AskRequiresPost(t *testing.T) {
	h, _ := newTestRouter(t, middleware.SessionModeAddress)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ask", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}
