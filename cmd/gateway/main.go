package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andrew/ai-gateway/pkg/artifact"
	"github.com/andrew/ai-gateway/pkg/cache"
	"github.com/andrew/ai-gateway/pkg/config"
	"github.com/andrew/ai-gateway/pkg/gateway"
	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/queue"
	"github.com/andrew/ai-gateway/pkg/quota"
	"github.com/andrew/ai-gateway/pkg/retrieval"
	"github.com/andrew/ai-gateway/pkg/store"
	"github.com/andrew/ai-gateway/pkg/vector"
)

var (
	configPath = flag.String("config", "", "Path to the YAML configuration file")
	addr       = flag.String("addr", "", "Listen address (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
	}()

	client, err := llm.NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.Timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing LLM client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	index, err := vector.NewQdrantStore(cfg.Qdrant.Addr, cfg.Qdrant.Collection)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Qdrant: %v\n", err)
		os.Exit(1)
	}
	defer index.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	defer redisClient.Close()
	kv := cache.NewRedisCache(redisClient)

	table := llm.NewTable(cfg.Models)
	handler := gateway.NewServer(gateway.Options{
		LLM:             client,
		Table:           table,
		Retriever:       retrieval.NewService(client, table, index, store.NewKnowledgeStore(db)),
		Conversations:   store.NewConversationStore(db),
		Artifacts:       artifact.New(cfg.Artifacts.BaseURL),
		Queue:           queue.NewRedisQueue(redisClient, cfg.Queue.Key),
		Quota:           quota.NewTracker(kv, cfg.Quota.HourlyTokenCeiling),
		Limiter:         gateway.NewRateLimiter(kv, cfg.RateLimit.PerMinute, cfg.RateLimit.GeneratePerMinute),
		Verifier:        gateway.NewJWTVerifier(cfg.Auth.JWTSecret),
		Logger:          logger,
		Environment:     cfg.Environment,
		InlineThreshold: cfg.Generate.InlineThresholdBytes,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
	})

	// Start the HTTP server
	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: handler,
	}

	go func() {
		log.Printf("Starting AI gateway on %s\n", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	// Shutdown the server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}
