package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/models"
)

type chatRequest struct {
	Messages    []models.Message `json:"messages"`
	Model       string           `json:"model,omitempty"`
	Stream      *bool            `json:"stream,omitempty"`
	Temperature *float32         `json:"temperature,omitempty"`
}

type chatUsage struct {
	EstimatedTokens int `json:"estimatedTokens"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	RequestID string    `json:"requestId"`
	Usage     chatUsage `json:"usage"`
}

func (r *chatRequest) validate() error {
	if len(r.Messages) == 0 {
		return Errorf(CodeInvalidArgument, "messages must not be empty")
	}
	for i, msg := range r.Messages {
		if !msg.Role.Valid() {
			return Errorf(CodeInvalidArgument, "message %d: unknown role %q", i, msg.Role)
		}
		if msg.Content == "" {
			return Errorf(CodeInvalidArgument, "message %d: empty content", i)
		}
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return Errorf(CodeInvalidArgument, "temperature must be in [0,2]")
	}
	return nil
}

// handleChat serves conversational inference with optional token streaming.
// Quota is pre-checked before any model call and incremented post-hoc by the
// estimated delta; enforcement is approximate by design.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, Errorf(CodeInvalidArgument, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	identity, _ := IdentityFromContext(r.Context())
	requestID := RequestIDFromContext(r.Context())

	exceeded, err := s.quota.Exceeded(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("quota check failed", "error", err, "request_id", requestID)
		writeError(w, Errorf(CodeUnavailable, "quota service unavailable"))
		return
	}
	if exceeded {
		writeError(w, Errorf(CodeQuotaExceeded, "hourly token quota exceeded"))
		return
	}

	model := s.table.Fast()
	if req.Model != "" {
		model = s.table.Resolve(req.Model)
	}
	config := llm.DefaultModelConfig()
	if req.Temperature != nil {
		config.Temperature = *req.Temperature
	}
	inputTokens := llm.EstimateMessageTokens(req.Messages)

	stream := true
	if req.Stream != nil {
		stream = *req.Stream
	}
	if stream {
		s.streamChat(w, r, model, req.Messages, config, identity, inputTokens)
		return
	}

	response, err := s.llm.Chat(r.Context(), model, req.Messages, config)
	if err != nil {
		s.logger.Error("chat inference failed", "error", err, "request_id", requestID)
		writeError(w, Errorf(CodeInternal, "inference failed"))
		return
	}

	estimated := inputTokens + llm.EstimateTextTokens(response)
	conv := &models.Conversation{
		RequestID:       requestID,
		UserID:          identity.UserID,
		Messages:        req.Messages,
		Response:        response,
		Model:           model,
		EstimatedTokens: estimated,
		Created:         time.Now().UTC(),
	}
	if err := s.conversations.Insert(r.Context(), conv); err != nil {
		s.logger.Error("conversation persist failed", "error", err, "request_id", requestID)
		writeError(w, Errorf(CodeInternal, "failed to persist conversation"))
		return
	}

	s.addQuota(identity.UserID, estimated, requestID)
	writeJSON(w, http.StatusOK, chatResponse{
		Response:  response,
		RequestID: requestID,
		Usage:     chatUsage{EstimatedTokens: estimated},
	})
}

// streamChat relays model chunks to the caller incrementally over a chunked
// text/plain body. The status line is held back until the first event: an
// inference backend that fails before producing any content still gets a
// proper error envelope. When the client disconnects the request context
// cancels and the underlying model stream is released.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, model string, messages []models.Message, config llm.ModelConfig, identity Identity, inputTokens int) {
	requestID := RequestIDFromContext(r.Context())
	events, err := s.llm.ChatStream(r.Context(), model, messages, config)
	if err != nil {
		s.logger.Error("stream open failed", "error", err, "request_id", requestID)
		writeError(w, Errorf(CodeUnavailable, "inference unavailable"))
		return
	}

	var first llm.StreamEvent
	var open bool
	select {
	case first, open = <-events:
	case <-r.Context().Done():
		return
	}
	if open && first.Err != nil {
		s.logger.Error("stream failed before first chunk", "error", first.Err, "request_id", requestID)
		writeError(w, Errorf(CodeUnavailable, "inference unavailable"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	// The relayed chunks are accumulated so the exchange can be persisted
	// once the stream ends; the response itself is never buffered back from
	// the client's perspective.
	var response strings.Builder
	relay := func(content string) bool {
		if _, err := w.Write([]byte(content)); err != nil {
			return false
		}
		response.WriteString(content)
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	if open && !relay(first.Content) {
		s.finishStream(identity, messages, model, response.String(), inputTokens, requestID)
		return
	}
	for open {
		select {
		case event, ok := <-events:
			if !ok {
				open = false
				continue
			}
			if event.Err != nil {
				// Mid-stream failure: close the stream cleanly rather than
				// hang the connection; the status line is already sent.
				s.logger.Error("stream failed mid-flight", "error", event.Err, "request_id", requestID)
				open = false
				continue
			}
			if !relay(event.Content) {
				open = false
			}
		case <-r.Context().Done():
			open = false
		}
	}
	s.finishStream(identity, messages, model, response.String(), inputTokens, requestID)
}

// finishStream persists the exchange and records the post-hoc token delta
// once the relay ends, however it ended. The request context may already be
// cancelled, so both writes run on a fresh context.
func (s *Server) finishStream(identity Identity, messages []models.Message, model, response string, inputTokens int, requestID string) {
	total := inputTokens + llm.EstimateTextTokens(response)
	conv := &models.Conversation{
		RequestID:       requestID,
		UserID:          identity.UserID,
		Messages:        messages,
		Response:        response,
		Model:           model,
		EstimatedTokens: total,
		Created:         time.Now().UTC(),
	}
	if err := s.conversations.Insert(context.Background(), conv); err != nil {
		s.logger.Error("conversation persist failed", "error", err, "request_id", requestID)
	}
	s.addQuota(identity.UserID, total, requestID)
}

// addQuota records the token delta best-effort; a failed increment is logged,
// never surfaced, since the response may already be on the wire.
func (s *Server) addQuota(userID string, tokens int, requestID string) {
	if err := s.quota.Add(context.Background(), userID, int64(tokens)); err != nil {
		s.logger.Error("quota increment failed", "error", err, "request_id", requestID)
	}
}
