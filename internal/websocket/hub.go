package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"mindsoothe-backend/internal/middleware"
	"mindsoothe-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type asker interface {
	Ask(ctx context.Context, sessionKey, userText string) (string, error)
}

// Hub serves the chat over WebSocket. Every text frame is one ask cycle for
// the session resolved when the connection was opened.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	cancelFuncs map[*websocket.Conn]context.CancelFunc
	chat        asker
}

func NewHub(chat asker) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		cancelFuncs: make(map[*websocket.Conn]context.CancelFunc),
		chat:        chat,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionKey := middleware.GetSessionKey(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// The request context ends when this handler returns; the connection
	// outlives it.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	h.registerConnection(sessionKey, conn, cancel)

	go func() {
		defer h.unregisterConnection(sessionKey, conn)
		h.serve(ctx, sessionKey, conn)
	}()
}

func (h *Hub) serve(ctx context.Context, sessionKey string, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req models.AskRequest
		if err := json.Unmarshal(data, &req); err != nil {
			req = models.AskRequest{}
		}

		var out interface{}
		reply, err := h.chat.Ask(ctx, sessionKey, req.Message)
		if err != nil {
			log.Printf("Error: ask failed for session %s over websocket: %v", sessionKey, err)
			out = models.ErrorResponse{Error: err.Error()}
		} else {
			out = models.AskResponse{Response: reply}
		}

		if err := conn.WriteJSON(out); err != nil {
			return
		}
	}
}

func (h *Hub) registerConnection(sessionKey string, conn *websocket.Conn, cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionKey] = append(h.connections[sessionKey], conn)
	h.cancelFuncs[conn] = cancel

	log.Printf("WebSocket connected: session %s (total: %d)", sessionKey, len(h.connections[sessionKey]))
}

func (h *Hub) unregisterConnection(sessionKey string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	if cancel, ok := h.cancelFuncs[conn]; ok {
		cancel()
		delete(h.cancelFuncs, conn)
	}

	conns := h.connections[sessionKey]
	for i, c := range conns {
		if c == conn {
			h.connections[sessionKey] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[sessionKey]) == 0 {
		delete(h.connections, sessionKey)
	}

	log.Printf("WebSocket disconnected: session %s", sessionKey)
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, conns := range h.connections {
		n += len(conns)
	}
	return n
}

// CloseAll drops every open connection, cancelling any ask still in flight.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, cancel := range h.cancelFuncs {
		cancel()
		conn.Close()
	}
}
