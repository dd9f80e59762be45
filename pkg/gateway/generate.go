package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/models"
)

// Length classes accepted by the generate route.
const (
	lengthShort  = "short"
	lengthMedium = "medium"
	lengthLong   = "long"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	Type   string `json:"type,omitempty"`
	Length string `json:"length,omitempty"`
	Style  string `json:"style,omitempty"`
}

type generateResponse struct {
	Content   string            `json:"content,omitempty"`
	Status    string            `json:"status,omitempty"`
	URL       string            `json:"url,omitempty"`
	Message   string            `json:"message,omitempty"`
	RequestID string            `json:"requestId"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (r *generateRequest) validate() error {
	if r.Prompt == "" {
		return Errorf(CodeInvalidArgument, "prompt must not be empty")
	}
	switch r.Length {
	case "", lengthShort, lengthMedium, lengthLong:
	default:
		return Errorf(CodeInvalidArgument, "length must be one of short, medium, long")
	}
	return nil
}

// isLongForm reports whether the job must be deferred: long jobs never hold
// a request connection open.
func (r *generateRequest) isLongForm() bool {
	return r.Length == lengthLong || r.Type == "book"
}

// handleGenerate serves one-shot or deferred content generation, choosing
// execution mode by estimated cost.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
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

	model := s.table.Fast()
	if req.Model != "" {
		model = s.table.Resolve(req.Model)
	}

	if req.isLongForm() {
		job := &models.QueuedJob{
			Type:   models.JobContentGeneration,
			Prompt: req.Prompt,
			Model:  model,
			Params: models.GenerationParams{
				ContentType: req.Type,
				Length:      req.Length,
				Style:       req.Style,
			},
			UserID:    identity.UserID,
			RequestID: requestID,
		}
		if err := s.queue.Enqueue(r.Context(), job); err != nil {
			s.logger.Error("enqueue failed", "error", err, "request_id", requestID)
			writeError(w, Errorf(CodeUnavailable, "job queue unavailable, please retry"))
			return
		}
		writeJSON(w, http.StatusAccepted, generateResponse{
			Status:    "queued",
			RequestID: requestID,
			Message:   "generation job accepted; poll status with the request id",
		})
		return
	}

	prompt := llm.Preamble(req.Type, req.Style) + "\n\n" + req.Prompt
	content, err := s.llm.Generate(r.Context(), model, prompt, llm.DefaultModelConfig())
	if err != nil {
		s.logger.Error("generation failed", "error", err, "request_id", requestID)
		writeError(w, Errorf(CodeInternal, "generation failed"))
		return
	}

	// Oversized output goes to the artifact store so responses stay within
	// downstream transport limits.
	if len(content) > s.inlineThreshold {
		art := &models.GeneratedArtifact{
			UserID:      identity.UserID,
			RequestID:   requestID,
			ContentType: req.Type,
			Metadata:    map[string]string{"model": model, "length": req.Length},
		}
		url, err := s.artifacts.Put(r.Context(), art, content)
		if err != nil {
			s.logger.Error("artifact store failed", "error", err, "request_id", requestID)
			writeError(w, Errorf(CodeInternal, "failed to store output"))
			return
		}
		writeJSON(w, http.StatusOK, generateResponse{
			Status:    "stored",
			URL:       url,
			RequestID: requestID,
		})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Content:   content,
		RequestID: requestID,
		Metadata:  map[string]string{"model": model, "type": req.Type, "length": req.Length},
	})
}
