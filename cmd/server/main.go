package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"mindsoothe-backend/internal/config"
	"mindsoothe-backend/internal/conversation"
	"mindsoothe-backend/internal/gateway"
	"mindsoothe-backend/internal/handlers"
	"mindsoothe-backend/internal/middleware"
	"mindsoothe-backend/internal/prompts"
	"mindsoothe-backend/internal/router"
	"mindsoothe-backend/internal/services"
	"mindsoothe-backend/internal/websocket"
	"mindsoothe-backend/internal/worker"
)

func main() {
	port := pflag.StringP("port", "p", "", "listen port (overrides PORT)")
	envFile := pflag.String("env-file", "", "load environment from this file instead of ./.env")
	debug := pflag.Bool("debug", false, "log file and line with every message")
	exportKey := pflag.String("export-session", "", "print the archived exchanges of this session as JSON lines and exit")
	exportLimit := pflag.Int("export-limit", 100, "most recent exchanges to print with --export-session")
	pflag.Parse()

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	log.Println("🚀 Starting Mind-Soothe...")

	// ──── Step 1: Load Environment Variables ────
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg := config.Load(envFiles...)
	if *port != "" {
		cfg.Port = *port
	}
	log.Println("✓ Environment variables loaded")

	if *exportKey != "" {
		n, err := runExport(cfg.ArchiveURL, *exportKey, *exportLimit, os.Stdout)
		if err != nil {
			log.Fatalf("✗ Export failed: %v", err)
		}
		log.Printf("✓ Exported %d exchanges for session %s", n, *exportKey)
		return
	}

	// ──── Step 2: Load System Prompt ────
	systemPrompt, err := prompts.Load(cfg.SystemPromptFile)
	if err != nil {
		log.Fatalf("✗ System prompt failed to load: %v", err)
	}
	log.Println("✓ System prompt loaded")

	// ──── Step 3: Initialize Inference Gateway ────
	gw, err := gateway.New(context.Background(), gateway.Config{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.Endpoint,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		log.Fatalf("✗ Inference gateway initialization failed: %v", err)
	}
	if closer, ok := gw.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	limited := gateway.NewLimiter(gw, cfg.GatewayConcurrentReq, cfg.GatewayTimeout)
	log.Printf("✓ Inference gateway ready (%s, model %s)", gw.Name(), cfg.Model)

	// ──── Step 4: Open Exchange Archive ────
	recorder, closeArchive, err := openArchive(cfg.ArchiveURL)
	if err != nil {
		log.Fatalf("✗ Exchange archive failed to open: %v", err)
	}
	defer closeArchive()

	var archivePool *worker.Pool
	if recorder != nil {
		archivePool = worker.NewPool(recorder, cfg.ArchiveWorkers, cfg.ArchiveQueueSize)
		archivePool.Start()
		recorder = archivePool
		log.Println("✓ Exchange archive connected")
	}

	// ──── Step 5: Initialize Conversation Store ────
	store := conversation.NewStore(conversation.Options{
		MaxSessions: cfg.MaxSessions,
		TTL:         cfg.SessionTTL,
		OnEvict: func(key string) {
			log.Printf("session %s released", key)
		},
	})
	chatService := services.NewChatService(store, limited, recorder, services.ChatConfig{
		SystemPrompt: systemPrompt,
		MaxExchanges: cfg.HistoryExchanges,
	})
	log.Printf("✓ Conversation store ready (max %d sessions, idle TTL %s)", cfg.MaxSessions, cfg.SessionTTL)

	// ──── Step 6: Initialize Handlers ────
	sessions, err := middleware.NewSessionResolver(cfg.SessionMode, cfg.SessionSecret, cfg.IsProduction())
	if err != nil {
		log.Fatalf("✗ Session resolver initialization failed: %v", err)
	}
	chatHandler := handlers.NewChatHandler(chatService)
	wsHub := websocket.NewHub(chatService)

	sessionMonitor := services.NewSessionMonitor(store, wsHub, cfg.MaxSessions)
	sessionMonitor.Start()

	// ──── Step 7: Start HTTP Server ────
	r := router.New(sessions, chatHandler, wsHub, cfg.AllowedOrigin)

	server := newServer(fmt.Sprintf(":%s", cfg.Port), r, limited.Budget())

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		sessionMonitor.Stop()
		wsHub.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		if archivePool != nil {
			archivePool.Stop()
		}
	}()

	log.Printf("✓ Mind-Soothe ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/ask (sessions by %s)", cfg.Port, sessions.Mode())
	log.Printf("  WS:   ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-shutdownDone
}
