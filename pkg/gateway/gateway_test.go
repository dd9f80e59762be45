package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrew/ai-gateway/pkg/cache"
	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/models"
	"github.com/andrew/ai-gateway/pkg/queue"
	"github.com/andrew/ai-gateway/pkg/quota"
	"github.com/andrew/ai-gateway/pkg/retrieval"
	"github.com/andrew/ai-gateway/pkg/vector"
)

const testSecret = "test-secret"

// stubLLM is an inference client stub with per-method call counters.
type stubLLM struct {
	mu            sync.Mutex
	chatCalls     int
	streamCalls   int
	generateCalls int
	embedCalls    int

	chatResponse     string
	chatErr          error
	streamEvents     []llm.StreamEvent
	streamErr        error
	generateResponse string
	generateErr      error
	embedding        []float32
	embedErr         error

	lastPrompt string
}

func (s *stubLLM) Chat(_ context.Context, _ string, _ []models.Message, _ llm.ModelConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatCalls++
	return s.chatResponse, s.chatErr
}

func (s *stubLLM) ChatStream(_ context.Context, _ string, _ []models.Message, _ llm.ModelConfig) (<-chan llm.StreamEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamCalls++
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	events := make(chan llm.StreamEvent, len(s.streamEvents))
	for _, event := range s.streamEvents {
		events <- event
	}
	close(events)
	return events, nil
}

func (s *stubLLM) Generate(_ context.Context, _ string, prompt string, _ llm.ModelConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateCalls++
	s.lastPrompt = prompt
	return s.generateResponse, s.generateErr
}

func (s *stubLLM) Embed(_ context.Context, _ string, _ string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embedCalls++
	return s.embedding, s.embedErr
}

func (s *stubLLM) Close() error { return nil }

func (s *stubLLM) counts() (chat, stream, generate, embed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatCalls, s.streamCalls, s.generateCalls, s.embedCalls
}

// fakeConversations records inserted rows in memory.
type fakeConversations struct {
	mu   sync.Mutex
	rows []*models.Conversation
	err  error
}

func (f *fakeConversations) Insert(_ context.Context, conv *models.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, conv)
	return nil
}

// fakeArtifacts stores artifact content keyed by the deterministic key.
type fakeArtifacts struct {
	mu      sync.Mutex
	content map[string]string
}

func (f *fakeArtifacts) Put(_ context.Context, art *models.GeneratedArtifact, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.content == nil {
		f.content = map[string]string{}
	}
	key := art.UserID + "/" + art.RequestID
	f.content[key] = content
	art.URL = "mem://localhost/artifacts/" + key
	return art.URL, nil
}

// fakeDocs serves knowledge documents by id.
type fakeDocs struct {
	docs map[string]models.KnowledgeDocument
}

func (f *fakeDocs) GetByIDs(_ context.Context, ids []string) ([]models.KnowledgeDocument, error) {
	var out []models.KnowledgeDocument
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// env bundles a gateway under test with its fakes.
type env struct {
	llm           *stubLLM
	queue         *queue.MemoryQueue
	cache         *cache.MemoryCache
	quota         *quota.Tracker
	conversations *fakeConversations
	artifacts     *fakeArtifacts
	retriever     *retrieval.Service
	server        *httptest.Server
	token         string
}

func newEnv(t *testing.T, mutate func(e *env, opts *Options)) *env {
	t.Helper()

	e := &env{
		llm:           &stubLLM{},
		queue:         queue.NewMemoryQueue(16),
		cache:         cache.NewMemoryCache(),
		conversations: &fakeConversations{},
		artifacts:     &fakeArtifacts{},
	}
	e.quota = quota.NewTracker(e.cache, 1000)
	table := llm.NewTable(nil)
	e.retriever = retrieval.NewService(e.llm, table, vector.NewMemoryStore(), &fakeDocs{})

	opts := Options{
		LLM:            e.llm,
		Table:          table,
		Retriever:      e.retriever,
		Conversations:  e.conversations,
		Artifacts:      e.artifacts,
		Queue:          e.queue,
		Quota:          e.quota,
		Limiter:        NewRateLimiter(e.cache, 1000, 1000),
		Verifier:       NewJWTVerifier(testSecret),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Environment:    "test",
		AllowedOrigins: []string{"https://app.example.com"},
	}
	if mutate != nil {
		mutate(e, &opts)
	}
	e.retriever = opts.Retriever
	e.server = httptest.NewServer(NewServer(opts))
	t.Cleanup(e.server.Close)

	token, err := NewToken(testSecret, "user-1", "client-1", time.Hour)
	require.NoError(t, err)
	e.token = token
	return e
}

// post issues an authenticated JSON POST to the gateway under test.
func (e *env) post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
