package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andrew/ai-gateway/pkg/cache"
	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/models"
	"github.com/andrew/ai-gateway/pkg/queue"
)

// StatusCompleted is the cache marker value written after a job's artifact
// is durably stored. The marker is written strictly after the artifact, so
// "completed" never precedes artifact availability.
const StatusCompleted = "completed"

// defaultStatusTTL bounds how long stale status markers linger.
const defaultStatusTTL = 24 * time.Hour

// ArtifactWriter stores a completed job's output under its deterministic key.
type ArtifactWriter interface {
	Put(ctx context.Context, art *models.GeneratedArtifact, content string) (string, error)
}

// Processor completes queued jobs independent of any client connection.
// Jobs may be delivered more than once; the deterministic artifact key makes
// re-processing overwrite rather than duplicate.
type Processor struct {
	client    llm.Client
	artifacts ArtifactWriter
	cache     cache.Cache
	logger    *slog.Logger
	statusTTL time.Duration
}

// NewProcessor wires a job processor.
func NewProcessor(client llm.Client, artifacts ArtifactWriter, c cache.Cache, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		client:    client,
		artifacts: artifacts,
		cache:     c,
		logger:    logger,
		statusTTL: defaultStatusTTL,
	}
}

// statusKey derives the cache key a status poller reads for a request.
func statusKey(requestID string) string {
	return "job:" + requestID
}

// JobStatus reads the completion marker for a request id.
func (p *Processor) JobStatus(ctx context.Context, requestID string) (string, bool, error) {
	return p.cache.Get(ctx, statusKey(requestID))
}

// ProcessBatch processes each job independently; one job's failure never
// aborts the rest of the batch. Failed jobs are logged and dropped — there
// is no retry beyond whatever the queue transport redelivers.
func (p *Processor) ProcessBatch(ctx context.Context, jobs []*models.QueuedJob) {
	for _, job := range jobs {
		if err := p.process(ctx, job); err != nil {
			p.logger.Error("job failed",
				"error", err,
				"type", job.Type,
				"request_id", job.RequestID,
				"user_id", job.UserID)
			continue
		}
		p.logger.Info("job completed", "type", job.Type, "request_id", job.RequestID)
	}
}

func (p *Processor) process(ctx context.Context, job *models.QueuedJob) error {
	switch job.Type {
	case models.JobContentGeneration:
		return p.processGeneration(ctx, job)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

func (p *Processor) processGeneration(ctx context.Context, job *models.QueuedJob) error {
	prompt := llm.Preamble(job.Params.ContentType, job.Params.Style) + "\n\n" + job.Prompt
	content, err := p.client.Generate(ctx, job.Model, prompt, llm.DefaultModelConfig())
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	art := &models.GeneratedArtifact{
		UserID:      job.UserID,
		RequestID:   job.RequestID,
		ContentType: job.Params.ContentType,
		Metadata:    map[string]string{"model": job.Model, "length": job.Params.Length},
	}
	// The artifact write must land before the status marker.
	if _, err := p.artifacts.Put(ctx, art, content); err != nil {
		return fmt.Errorf("artifact store failed: %w", err)
	}
	if err := p.cache.Set(ctx, statusKey(job.RequestID), StatusCompleted, p.statusTTL); err != nil {
		return fmt.Errorf("status marker failed: %w", err)
	}
	return nil
}

// Run consumes batches from the queue until ctx is cancelled.
func (p *Processor) Run(ctx context.Context, q queue.Queue, batchSize int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		jobs, err := q.Dequeue(ctx, batchSize)
		// A failed drain can still return jobs already popped from the
		// queue; they must be processed, not dropped with the error.
		if len(jobs) > 0 {
			p.ProcessBatch(ctx, jobs)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("dequeue failed", "error", err)
			time.Sleep(time.Second)
		}
	}
}
