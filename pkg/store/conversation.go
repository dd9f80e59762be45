package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andrew/ai-gateway/pkg/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ConversationStore persists request/response exchanges. The message history
// column is written once at insert and never updated.
type ConversationStore struct {
	db *sql.DB
}

// NewConversationStore wraps an opened database.
func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Insert creates a conversation row. The request id must be unique.
func (s *ConversationStore) Insert(ctx context.Context, conv *models.Conversation) error {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	now := time.Now().UTC()
	if conv.Created.IsZero() {
		conv.Created = now
	}
	conv.Updated = now
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations
			(request_id, user_id, messages, response, model, estimated_tokens, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		conv.RequestID, conv.UserID, string(messages), conv.Response, conv.Model,
		conv.EstimatedTokens, conv.Created, conv.Updated)
	if err != nil {
		return fmt.Errorf("failed to insert conversation %s: %w", conv.RequestID, err)
	}
	return nil
}

// UpdateResponse touches only the response and metadata fields of an
// existing conversation; the message history stays immutable.
func (s *ConversationStore) UpdateResponse(ctx context.Context, requestID, response string, estimatedTokens int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET response = ?, estimated_tokens = ?, updated_at = ?
		WHERE request_id = ?`,
		response, estimatedTokens, time.Now().UTC(), requestID)
	if err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", requestID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByRequestID returns the conversation stored under the given request id.
func (s *ConversationStore) GetByRequestID(ctx context.Context, requestID string) (*models.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT request_id, user_id, messages, response, model, estimated_tokens, created_at, updated_at
		FROM conversations WHERE request_id = ?`, requestID)

	var conv models.Conversation
	var messages string
	err := row.Scan(&conv.RequestID, &conv.UserID, &messages, &conv.Response,
		&conv.Model, &conv.EstimatedTokens, &conv.Created, &conv.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", requestID, err)
	}
	if err := json.Unmarshal([]byte(messages), &conv.Messages); err != nil {
		return nil, fmt.Errorf("corrupt message history for %s: %w", requestID, err)
	}
	return &conv, nil
}
