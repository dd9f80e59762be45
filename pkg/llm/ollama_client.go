package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/andrew/ai-gateway/pkg/models"
)

// OllamaClient invokes models served by a local or remote Ollama server.
type OllamaClient struct {
	client *api.Client
}

// NewOllamaClient creates a client for the Ollama server at rawURL. An empty
// rawURL falls back to the default local server address.
func NewOllamaClient(rawURL string, timeout time.Duration) (*OllamaClient, error) {
	if rawURL == "" {
		rawURL = "http://localhost:11434"
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL %q: %w", rawURL, err)
	}
	if timeout == 0 {
		// Long generations can take minutes.
		timeout = 5 * time.Minute
	}
	httpClient := &http.Client{Timeout: timeout}
	return &OllamaClient{client: api.NewClient(base, httpClient)}, nil
}

func toAPIMessages(messages []models.Message) []api.Message {
	out := make([]api.Message, len(messages))
	for i, msg := range messages {
		out[i] = api.Message{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}

func toAPIOptions(config ModelConfig) map[string]interface{} {
	opts := map[string]interface{}{
		"temperature": config.Temperature,
		"top_p":       config.TopP,
	}
	if config.MaxTokens > 0 {
		opts["num_predict"] = config.MaxTokens
	}
	return opts
}

// Chat runs a conversational exchange and returns the full response text.
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []models.Message, config ModelConfig) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: toAPIMessages(messages),
		Options:  toAPIOptions(config),
		Stream:   &stream,
	}

	var response string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	return response, nil
}

// ChatStream runs a conversational exchange, relaying each chunk as the
// model produces it. The returned channel is closed on completion, on a
// mid-stream error (reported as the final event), or when ctx is cancelled.
func (c *OllamaClient) ChatStream(ctx context.Context, model string, messages []models.Message, config ModelConfig) (<-chan StreamEvent, error) {
	stream := true
	req := &api.ChatRequest{
		Model:    model,
		Messages: toAPIMessages(messages),
		Options:  toAPIOptions(config),
		Stream:   &stream,
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Message.Content == "" {
				return nil
			}
			select {
			case events <- StreamEvent{Content: resp.Message.Content}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			select {
			case events <- StreamEvent{Err: fmt.Errorf("ollama stream failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return events, nil
}

// Generate runs a single-prompt completion and returns the full output.
func (c *OllamaClient) Generate(ctx context.Context, model string, prompt string, config ModelConfig) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Options: toAPIOptions(config),
		Stream:  &stream,
	}

	var response string
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response += resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return response, nil
}

// Embed returns the embedding vector for the given text.
func (c *OllamaClient) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	req := &api.EmbeddingRequest{Model: model, Prompt: text}
	resp, err := c.client.Embeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings failed: %w", err)
	}
	vector := make([]float32, len(resp.Embedding))
	for i, val := range resp.Embedding {
		vector[i] = float32(val)
	}
	return vector, nil
}

// Close cleans up any resources
func (c *OllamaClient) Close() error {
	// No cleanup needed for HTTP client
	return nil
}
