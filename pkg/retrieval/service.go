package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrew/ai-gateway/pkg/llm"
	"github.com/andrew/ai-gateway/pkg/models"
	"github.com/andrew/ai-gateway/pkg/vector"
)

// NoRelevantAnswer is the fixed response returned when retrieval finds no
// matching documents. No generation call is made in that case.
const NoRelevantAnswer = "No relevant information was found for this query."

// groundedPrompt instructs the model to answer only from the supplied
// context and to say so explicitly when the context is insufficient.
const groundedPrompt = `Answer the question using only the context below.
If the context does not contain enough information to answer, say so explicitly.

Context:
%s

Question: %s`

// KnowledgeFetcher batch-fetches document bodies by id.
type KnowledgeFetcher interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.KnowledgeDocument, error)
}

// Result is the outcome of a grounded answer pipeline run.
type Result struct {
	Answer     string  `json:"answer"`
	Sources    int     `json:"sources"`
	Confidence float32 `json:"confidence"`
}

// Service answers natural-language queries grounded in retrieved reference
// documents: embed the query, find the nearest document ids, fetch their
// bodies, and generate an answer constrained to that context.
type Service struct {
	client llm.Client
	table  llm.Table
	index  vector.Store
	docs   KnowledgeFetcher
}

// NewService wires the retrieval pipeline.
func NewService(client llm.Client, table llm.Table, index vector.Store, docs KnowledgeFetcher) *Service {
	return &Service{client: client, table: table, index: index, docs: docs}
}

// Answer runs the full pipeline for the query, retrieving up to topK
// documents. A query with no matches is a defined terminal outcome, not an
// error.
func (s *Service) Answer(ctx context.Context, query string, topK int) (*Result, error) {
	embedding, err := s.client.Embed(ctx, s.table.Embedding(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.index.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(matches) == 0 {
		return &Result{Answer: NoRelevantAnswer}, nil
	}

	ids := make([]string, len(matches))
	topScore := matches[0].Score
	for i, match := range matches {
		ids[i] = match.DocumentID
		if match.Score > topScore {
			topScore = match.Score
		}
	}

	docs, err := s.docs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	if len(docs) == 0 {
		return &Result{Answer: NoRelevantAnswer}, nil
	}

	prompt := fmt.Sprintf(groundedPrompt, buildContext(docs), query)
	answer, err := s.client.Generate(ctx, s.table.Fast(), prompt, llm.DefaultModelConfig())
	if err != nil {
		return nil, fmt.Errorf("grounded generation failed: %w", err)
	}

	return &Result{Answer: answer, Sources: len(docs), Confidence: topScore}, nil
}

// buildContext concatenates document titles and bodies into the prompt
// context block.
func buildContext(docs []models.KnowledgeDocument) string {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if doc.Title != "" {
			b.WriteString(doc.Title)
			b.WriteString("\n")
		}
		b.WriteString(doc.Body)
	}
	return b.String()
}
