package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/ai-gateway/pkg/models"
)

func job(requestID string) *models.QueuedJob {
	return &models.QueuedJob{
		Type:      models.JobContentGeneration,
		Prompt:    "p",
		UserID:    "user-1",
		RequestID: requestID,
	}
}

func TestEnqueueDequeuePreservesOrder(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, job("a")))
	require.NoError(t, q.Enqueue(ctx, job("b")))
	require.NoError(t, q.Enqueue(ctx, job("c")))
	assert.Equal(t, 3, q.Len())

	jobs, err := q.Dequeue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "a", jobs[0].RequestID)
	assert.Equal(t, "b", jobs[1].RequestID)
	assert.Equal(t, "c", jobs[2].RequestID)
}

func TestDequeueRespectsBatchSize(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, job(id)))
	}

	jobs, err := q.Dequeue(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, 1, q.Len())
}

func TestEnqueueFullQueue(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, job("a")))
	err := q.Enqueue(ctx, job("b"))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestDequeueHonoursContextCancellation(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
