package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/ai-gateway/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConversationRoundTrip(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationStore(db)
	ctx := context.Background()

	conv := &models.Conversation{
		RequestID: "req-1",
		UserID:    "user-1",
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "hello"},
		},
		Response:        "hi there",
		Model:           "llama3.2",
		EstimatedTokens: 4,
	}
	require.NoError(t, conversations.Insert(ctx, conv))

	got, err := conversations.GetByRequestID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "hi there", got.Response)
	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, 4, got.EstimatedTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, models.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.False(t, got.Created.IsZero())
}

func TestConversationDuplicateRequestID(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationStore(db)
	ctx := context.Background()

	conv := &models.Conversation{RequestID: "req-1", UserID: "user-1"}
	require.NoError(t, conversations.Insert(ctx, conv))
	assert.Error(t, conversations.Insert(ctx, conv))
}

func TestUpdateResponseLeavesHistoryUntouched(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationStore(db)
	ctx := context.Background()

	conv := &models.Conversation{
		RequestID: "req-1",
		UserID:    "user-1",
		Messages:  []models.Message{{Role: models.RoleUser, Content: "question"}},
	}
	require.NoError(t, conversations.Insert(ctx, conv))
	require.NoError(t, conversations.UpdateResponse(ctx, "req-1", "answer", 12))

	got, err := conversations.GetByRequestID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "answer", got.Response)
	assert.Equal(t, 12, got.EstimatedTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "question", got.Messages[0].Content)
}

func TestUpdateResponseMissingRow(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationStore(db)

	err := conversations.UpdateResponse(context.Background(), "ghost", "x", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByRequestIDMissingRow(t *testing.T) {
	db := openTestDB(t)
	conversations := NewConversationStore(db)

	_, err := conversations.GetByRequestID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKnowledgeInsertAndBatchFetch(t *testing.T) {
	db := openTestDB(t)
	docs := NewKnowledgeStore(db)
	ctx := context.Background()

	require.NoError(t, docs.Insert(ctx, &models.KnowledgeDocument{
		ID: "doc-1", Title: "Tides", Body: "The moon causes tides.",
		Category: "science", Tags: []string{"ocean", "moon"}, Source: "tides.md",
	}))
	require.NoError(t, docs.Insert(ctx, &models.KnowledgeDocument{
		ID: "doc-2", Title: "Oceans", Body: "Oceans are large.",
	}))

	got, err := docs.GetByIDs(ctx, []string{"doc-1", "doc-2", "doc-missing"})
	require.NoError(t, err)
	require.Len(t, got, 2, "missing ids are skipped")

	byID := map[string]models.KnowledgeDocument{}
	for _, doc := range got {
		byID[doc.ID] = doc
	}
	assert.Equal(t, "Tides", byID["doc-1"].Title)
	assert.Equal(t, []string{"ocean", "moon"}, byID["doc-1"].Tags)
	assert.Equal(t, "science", byID["doc-1"].Category)
	assert.Empty(t, byID["doc-2"].Tags)
}

func TestKnowledgeGetByIDsEmpty(t *testing.T) {
	db := openTestDB(t)
	docs := NewKnowledgeStore(db)

	got, err := docs.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
