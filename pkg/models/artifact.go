package models

import "time"

// GeneratedArtifact is the output of a (possibly asynchronous) generation
// job. The storage key is derived deterministically from (user id, request
// id), so re-processing the same job overwrites rather than duplicates.
type GeneratedArtifact struct {
	UserID      string            `json:"user_id"`
	RequestID   string            `json:"request_id"`
	ContentType string            `json:"content_type"`
	Key         string            `json:"key"`
	URL         string            `json:"url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ExpiresAt   time.Time         `json:"expires_at,omitempty"`
}
