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

	"github.com/agentbridge/gateway/internal/agent"
	"github.com/agentbridge/gateway/internal/config"
	"github.com/agentbridge/gateway/internal/policy"
	"github.com/agentbridge/gateway/internal/service"
	"github.com/agentbridge/gateway/internal/store"
	transport "github.com/agentbridge/gateway/internal/transport/http"
	"github.com/agentbridge/gateway/internal/transport/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting gateway...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Remote agent URL: %s", cfg.AgentURL)

	// Initialize store: in-memory unless a database URL is configured
	var st store.Store
	if cfg.DatabaseURL == "" {
		st = store.NewMemoryStore()
		log.Printf("Using in-memory store")
	} else {
		sqliteStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize store: %v", err)
		}
		st = sqliteStore
		log.Printf("Using sqlite store: %s", cfg.DatabaseURL)
	}
	defer st.Close()

	// Initialize agent client
	agentClient := agent.NewClient(cfg.AgentURL, cfg.ProbeTimeout, cfg.ChatTimeout)

	// Initialize access policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(st, agentClient, policyEngine, cfg)

	// Initialize servers
	wsServer := ws.NewServer(cfg)
	e := transport.NewServer(svc, wsServer, cfg)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Gateway started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gateway...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Gateway stopped")
}
