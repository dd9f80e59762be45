package llm

import (
	"context"

	"github.com/andrew/ai-gateway/pkg/models"
)

// Client is the interface for invoking a named model. Both streaming and
// batch modes are supported; embeddings ride on the same abstraction.
type Client interface {
	// Chat runs a conversational exchange and returns the full response.
	Chat(ctx context.Context, model string, messages []models.Message, config ModelConfig) (string, error)

	// ChatStream runs a conversational exchange and returns a lazy, finite,
	// non-restartable sequence of text chunks. The channel is closed when
	// the model signals completion or after an error event; cancelling ctx
	// releases the underlying model stream.
	ChatStream(ctx context.Context, model string, messages []models.Message, config ModelConfig) (<-chan StreamEvent, error)

	// Generate runs a single-prompt completion and returns the full output.
	Generate(ctx context.Context, model string, prompt string, config ModelConfig) (string, error)

	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, model string, text string) ([]float32, error)

	Close() error
}

// StreamEvent is a partial event in a streaming response. Content holds the
// next text chunk; Err reports a mid-stream failure, after which the channel
// is closed.
type StreamEvent struct {
	Content string
	Err     error
}

// ModelConfig holds configuration parameters for model generation
type ModelConfig struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// DefaultModelConfig returns a default configuration
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   2048,
	}
}
