package models

// KnowledgeDocument represents a chunk of reference material usable for RAG.
// Documents are immutable after ingestion; the vector index entry and the
// stored document row are kept consistent by the ingestion pipeline.
type KnowledgeDocument struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Source   string   `json:"source"`
}

// SearchResult represents a document that matched a similarity query.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Score      float32 `json:"score"`
}
