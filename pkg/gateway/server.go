package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/models"
	"github.com/andrew/ai-gateway/pkg/queue"
	"github.com/andrew/ai-gateway/pkg/quota"
	"github.com/andrew/ai-gateway/pkg/retrieval"
)

// Protected route paths.
const (
	routeChat     = "/api/ai/chat"
	routeGenerate = "/api/ai/generate"
	routeRAG      = "/api/ai/rag"
)

// ConversationStore persists completed exchanges.
type ConversationStore interface {
	Insert(ctx context.Context, conv *models.Conversation) error
}

// ArtifactWriter stores oversized generation output and returns a locator.
type ArtifactWriter interface {
	Put(ctx context.Context, art *models.GeneratedArtifact, content string) (string, error)
}

// Server is the single entry point for all client traffic. It is stateless
// per invocation; all cross-request coordination goes through the injected
// external stores.
type Server struct {
	llm             llm.Client
	table           llm.Table
	retriever       *retrieval.Service
	conversations   ConversationStore
	artifacts       ArtifactWriter
	queue           queue.Queue
	quota           *quota.Tracker
	limiter         *RateLimiter
	verifier        Verifier
	logger          *slog.Logger
	environment     string
	inlineThreshold int
	allowedOrigins  []string
}

// Options carries the collaborators and policy configuration for a Server.
type Options struct {
	LLM             llm.Client
	Table           llm.Table
	Retriever       *retrieval.Service
	Conversations   ConversationStore
	Artifacts       ArtifactWriter
	Queue           queue.Queue
	Quota           *quota.Tracker
	Limiter         *RateLimiter
	Verifier        Verifier
	Logger          *slog.Logger
	Environment     string
	InlineThreshold int
	AllowedOrigins  []string
}

// NewServer builds the gateway with its middleware chain and routes bound.
func NewServer(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InlineThreshold <= 0 {
		opts.InlineThreshold = 64 * 1024
	}
	s := &Server{
		llm:             opts.LLM,
		table:           opts.Table,
		retriever:       opts.Retriever,
		conversations:   opts.Conversations,
		artifacts:       opts.Artifacts,
		queue:           opts.Queue,
		quota:           opts.Quota,
		limiter:         opts.Limiter,
		verifier:        opts.Verifier,
		logger:          opts.Logger,
		environment:     opts.Environment,
		inlineThreshold: opts.InlineThreshold,
		allowedOrigins:  opts.AllowedOrigins,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	protected := http.NewServeMux()
	protected.HandleFunc("POST "+routeChat, s.handleChat)
	protected.HandleFunc("POST "+routeGenerate, s.handleGenerate)
	protected.HandleFunc("POST "+routeRAG, s.handleRAG)
	mux.Handle("/api/", withAuth(withRateLimit(protected, s.limiter), s.verifier))

	var handler http.Handler = mux
	handler = withAccessLog(handler, s.logger)
	handler = withCORS(handler, s.allowedOrigins)
	handler = withSecurityHeaders(handler)
	handler = withRequestID(handler)
	handler = withRecovery(handler, s.logger)
	return handler
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// handleHealth reports liveness; always 200 while the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Environment: s.environment,
	})
}
