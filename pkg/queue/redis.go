package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andrew/ai-gateway/pkg/models"
)

// blockTimeout bounds how long Dequeue waits for the first job so the worker
// loop can observe context cancellation.
const blockTimeout = 2 * time.Second

// RedisQueue is a Queue backed by a Redis list.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue wraps an existing Redis client; jobs live in the list at key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Enqueue pushes the job onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, job *models.QueuedJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.RequestID, err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.RequestID, err)
	}
	return nil
}

// Dequeue blocks for the first job, then drains without blocking until the
// batch is full or the list is empty.
func (q *RedisQueue) Dequeue(ctx context.Context, max int) ([]*models.QueuedJob, error) {
	if max < 1 {
		max = 1
	}
	values, err := q.client.BRPop(ctx, blockTimeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}
	// BRPop returns [key, value].
	raw := []string{values[1]}
	for len(raw) < max {
		value, err := q.client.RPop(ctx, q.key).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to dequeue: %w", err)
		}
		raw = append(raw, value)
	}

	jobs := make([]*models.QueuedJob, 0, len(raw))
	for _, value := range raw {
		var job models.QueuedJob
		if err := json.Unmarshal([]byte(value), &job); err != nil {
			return jobs, fmt.Errorf("corrupt job payload: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}
