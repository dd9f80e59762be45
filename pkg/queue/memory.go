package queue

import (
	"context"
	"errors"

	"github.com/andrew/ai-gateway/pkg/models"
)

// ErrQueueFull is returned when the in-process queue cannot accept a job.
var ErrQueueFull = errors.New("queue full")

// MemoryQueue is an in-process Queue used by tests and local development.
type MemoryQueue struct {
	jobs chan *models.QueuedJob
}

// NewMemoryQueue returns an in-process queue holding up to capacity jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity < 1 {
		capacity = 64
	}
	return &MemoryQueue{jobs: make(chan *models.QueuedJob, capacity)}
}

// Enqueue accepts the job unless the queue is full.
func (q *MemoryQueue) Enqueue(_ context.Context, job *models.QueuedJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks for the first job, then drains without blocking until the
// batch is full or the queue is empty.
func (q *MemoryQueue) Dequeue(ctx context.Context, max int) ([]*models.QueuedJob, error) {
	if max < 1 {
		max = 1
	}
	var jobs []*models.QueuedJob
	select {
	case job := <-q.jobs:
		jobs = append(jobs, job)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	for len(jobs) < max {
		select {
		case job := <-q.jobs:
			jobs = append(jobs, job)
		default:
			return jobs, nil
		}
	}
	return jobs, nil
}

// Len reports how many jobs are currently waiting.
func (q *MemoryQueue) Len() int { return len(q.jobs) }
