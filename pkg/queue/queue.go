package queue

import (
	"context"

	"github.com/andrew/ai-gateway/pkg/models"
)

// Queue carries asynchronous generation jobs from the gateway to the worker.
// Delivery is at-least-once: a dequeued job that is not fully processed may
// be observed again, so consumers must be idempotent.
type Queue interface {
	// Enqueue accepts a job for asynchronous processing. An error means the
	// job was not accepted and the caller should retry.
	Enqueue(ctx context.Context, job *models.QueuedJob) error

	// Dequeue returns up to max jobs, blocking briefly when the queue is
	// empty. A nil slice with nil error means nothing arrived in time.
	Dequeue(ctx context.Context, max int) ([]*models.QueuedJob, error)
}
