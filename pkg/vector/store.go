package vector

import (
	"context"

	"github.com/andrew/ai-gateway/pkg/models"
)

// Store defines the interface for vector index operations
type Store interface {
	// Upsert inserts or updates a document vector in the index
	Upsert(ctx context.Context, documentID string, vector []float32, payload map[string]string) error

	// Search finds the document ids most similar to the query vector
	Search(ctx context.Context, queryVector []float32, limit int) ([]models.SearchResult, error)

	// Delete removes a document vector from the index
	Delete(ctx context.Context, documentID string) error

	// Close releases resources used by the vector store
	Close() error
}
