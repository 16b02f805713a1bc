package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"mindsoothe-backend/internal/handlers"
	"mindsoothe-backend/internal/middleware"
	"mindsoothe-backend/internal/web"
	"mindsoothe-backend/internal/websocket"
)

func New(
	sessions *middleware.SessionResolver,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	allowedOrigin string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(allowedOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Chat page ────
	r.Get("/", web.Index)
	r.Handle("/static/*", web.Static())

	// ──── Chat API ────
	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Post("/ask", chatHandler.Ask)
		r.Post("/reset", chatHandler.Reset)
		r.Get("/history", chatHandler.History)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
