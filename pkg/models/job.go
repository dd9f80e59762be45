package models

// JobType identifies the kind of asynchronous work a queued job carries.
type JobType string

const (
	// JobContentGeneration is the only job type the worker understands.
	JobContentGeneration JobType = "content_generation"
)

// GenerationParams carries the content-shaping parameters of a generate
// request through the queue.
type GenerationParams struct {
	ContentType string `json:"content_type"`
	Length      string `json:"length"`
	Style       string `json:"style"`
}

// QueuedJob is a unit of asynchronous work. Delivery is at-least-once, so
// processing must stay safe to execute more than once; the deterministic
// artifact key and the cache status marker make completion idempotent.
type QueuedJob struct {
	Type      JobType          `json:"type"`
	Prompt    string           `json:"prompt"`
	Model     string           `json:"model"`
	Params    GenerationParams `json:"params"`
	UserID    string           `json:"user_id"`
	RequestID string           `json:"request_id"`
}
