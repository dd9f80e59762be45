package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andrew/ai-gateway/pkg/models"
)

// KnowledgeStore holds the reference documents the RAG pipeline grounds its
// answers in. Documents are immutable after ingestion.
type KnowledgeStore struct {
	db *sql.DB
}

// NewKnowledgeStore wraps an opened database.
func NewKnowledgeStore(db *sql.DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// Insert stores a document. The caller is responsible for upserting the
// matching vector entry so the index and the store stay consistent.
func (s *KnowledgeStore) Insert(ctx context.Context, doc *models.KnowledgeDocument) error {
	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, body, category, tags, source)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Body, doc.Category, string(tags), doc.Source)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}
	return nil
}

// GetByIDs batch-fetches documents. Missing ids are silently skipped; the
// result order is unspecified.
func (s *KnowledgeStore) GetByIDs(ctx context.Context, ids []string) ([]models.KnowledgeDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, category, tags, source FROM documents WHERE id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.KnowledgeDocument
	for rows.Next() {
		var doc models.KnowledgeDocument
		var tags string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Body, &doc.Category, &tags, &doc.Source); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
			return nil, fmt.Errorf("corrupt tags for document %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
