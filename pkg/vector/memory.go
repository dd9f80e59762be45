package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/andrew/ai-gateway/pkg/models"
)

// MemoryStore is an in-process vector Store using cosine similarity. It is
// intended for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string][]float32)}
}

// Upsert inserts or replaces the vector for the given document id.
func (s *MemoryStore) Upsert(_ context.Context, documentID string, vector []float32, _ map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]float32, len(vector))
	copy(stored, vector)
	s.vectors[documentID] = stored
	return nil
}

// Search returns up to limit document ids ordered by cosine similarity.
func (s *MemoryStore) Search(_ context.Context, queryVector []float32, limit int) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.SearchResult, 0, len(s.vectors))
	for id, vec := range s.vectors {
		score := cosineSimilarity(queryVector, vec)
		results = append(results, models.SearchResult{DocumentID: id, Score: score})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Delete removes the vector for the given document id.
func (s *MemoryStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vectors, documentID)
	return nil
}

// Close is a no-op for the in-process store.
func (s *MemoryStore) Close() error { return nil }

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
