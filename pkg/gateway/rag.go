package gateway

import (
	"encoding/json"
	"net/http"
)

const defaultTopK = 5

type ragRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topK,omitempty"`
}

type ragResponse struct {
	Answer     string  `json:"answer"`
	Sources    int     `json:"sources"`
	Confidence float32 `json:"confidence"`
}

// handleRAG serves context-grounded question answering.
func (s *Server) handleRAG(w http.ResponseWriter, r *http.Request) {
	var req ragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, Errorf(CodeInvalidArgument, "invalid request body"))
		return
	}
	if req.Query == "" {
		writeError(w, Errorf(CodeInvalidArgument, "query must not be empty"))
		return
	}
	if req.TopK < 0 {
		writeError(w, Errorf(CodeInvalidArgument, "topK must be at least 1"))
		return
	}
	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	result, err := s.retriever.Answer(r.Context(), req.Query, topK)
	if err != nil {
		s.logger.Error("rag pipeline failed", "error", err,
			"request_id", RequestIDFromContext(r.Context()))
		writeError(w, Errorf(CodeInternal, "retrieval failed"))
		return
	}

	writeJSON(w, http.StatusOK, ragResponse{
		Answer:     result.Answer,
		Sources:    result.Sources,
		Confidence: result.Confidence,
	})
}
