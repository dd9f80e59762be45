package models

import "time"

// Role represents the role of a message sender
type Role string

const (
	// RoleUser represents a message from the user
	RoleUser Role = "user"
	// RoleAssistant represents a message from the assistant
	RoleAssistant Role = "assistant"
	// RoleSystem represents a system message
	RoleSystem Role = "system"
)

// Valid reports whether the role is one of the known sender roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message represents a chat message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation represents one completed request/response exchange.
// The message history is immutable once the row is created; only the
// response and metadata fields are ever updated afterwards.
type Conversation struct {
	RequestID       string    `json:"request_id"`
	UserID          string    `json:"user_id"`
	Messages        []Message `json:"messages"`
	Response        string    `json:"response"`
	Model           string    `json:"model"`
	EstimatedTokens int       `json:"estimated_tokens"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
}
