package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/andrew/ai-gateway/pkg/artifact"
	"github.com/andrew/ai-gateway/pkg/cache"
	"github.com/andrew/ai-gateway/pkg/config"
	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/queue"
	"github.com/andrew/ai-gateway/pkg/worker"
)

var (
	configPath = flag.String("config", "", "Path to the YAML configuration file")
	batchSize  = flag.Int("batch", 0, "Job batch size (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *batchSize > 0 {
		cfg.Queue.BatchSize = *batchSize
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("%s consuming %s (batch size %d)\n",
		boldGreen("Content generation worker"), boldCyan(cfg.Queue.Key), cfg.Queue.BatchSize)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	defer redisClient.Close()

	processor := worker.NewProcessor(
		client,
		artifact.New(cfg.Artifacts.BaseURL),
		cache.NewRedisCache(redisClient),
		logger,
	)

	jobs := queue.NewRedisQueue(redisClient, cfg.Queue.Key)
	if err := processor.Run(ctx, jobs, cfg.Queue.BatchSize); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Worker stopped: %v\n", err)
		os.Exit(1)
	}
}
