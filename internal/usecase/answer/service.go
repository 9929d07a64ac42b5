// Package answer implements the retrieval-grounded answer pipeline:
// embed the query, retrieve candidates, extract a cited answer under strict
// grounding constraints, and reconcile citations against what was retrieved.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/logger"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/metrics"
)

// TopK bounds for a single question.
const (
	MinTopK     = 1
	MaxTopK     = 10
	DefaultTopK = 3
)

const schemaName = "answer"

// Service orchestrates the answer pipeline.
type Service struct {
	embed   Embedder
	search  Searcher
	extract Extractor
}

// New creates an answer service.
func New(embed Embedder, search Searcher, extract Extractor) *Service {
	return &Service{embed: embed, search: search, extract: extract}
}

// candidateSet holds the retrieved documents for one request, keyed by id,
// with insertion order preserving retrieval rank.
type candidateSet struct {
	order []int64
	byID  map[int64]domain.RetrievedDocument
}

// newCandidateSet builds a candidate set, deduplicating by id.
// On duplicate ids the first occurrence by rank wins.
func newCandidateSet(docs []domain.RetrievedDocument) *candidateSet {
	cs := &candidateSet{byID: make(map[int64]domain.RetrievedDocument, len(docs))}
	for _, doc := range docs {
		if _, seen := cs.byID[doc.ID]; seen {
			continue
		}
		cs.byID[doc.ID] = doc
		cs.order = append(cs.order, doc.ID)
	}
	return cs
}

// Answer answers a question from the top topK most similar stored documents.
//
// The pipeline is strictly linear: embed, search, extract, reconcile. A "no
// answer" extraction outcome is terminal and never retried here; retrying a
// probabilistic extractor that legitimately found nothing risks inducing a
// hallucinated answer on the second attempt.
func (s *Service) Answer(ctx context.Context, query string, topK int) (domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Answer{}, domain.ErrEmptyQuery
	}
	if topK < MinTopK || topK > MaxTopK {
		return domain.Answer{}, domain.ErrInvalidTopK
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed query: %w", err)
	}

	retrieved, err := s.search.Search(ctx, emb.Embedding, topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("search documents: %w", err)
	}
	if len(retrieved) == 0 {
		return domain.Answer{}, domain.ErrNoRelevantDocuments
	}

	cands := newCandidateSet(retrieved)

	req := domain.ExtractionRequest{
		Name:   schemaName,
		System: systemPrompt,
		User:   buildPayload(query, cands),
		Schema: answerSchema,
	}

	var ext extraction
	if err := s.extract.Extract(ctx, req, &ext); err != nil {
		return domain.Answer{}, fmt.Errorf("extract answer: %w", err)
	}

	// A partial extraction (text without ids, or ids without text) is "no answer".
	if ext.Answer == nil || ext.DocumentIDs == nil {
		return domain.Answer{}, domain.ErrNoAnswer
	}

	return domain.Answer{
		Answer:    *ext.Answer,
		Documents: s.reconcile(ctx, ext.DocumentIDs, cands),
	}, nil
}

// reconcile filters model-cited ids against the candidate set, preserving the
// model's citation order. Ids that were never retrieved are dropped so a
// hallucinated citation cannot reach the caller; the drop is counted but the
// answer is still returned.
func (s *Service) reconcile(ctx context.Context, ids []int64, cands *candidateSet) []domain.AnswerDocument {
	cited := make([]domain.AnswerDocument, 0, len(ids))
	for _, id := range ids {
		doc, ok := cands.byID[id]
		if !ok {
			metrics.CitationsDroppedTotal.Inc()
			logger.FromContext(ctx).Warn("dropped citation outside candidate set",
				zap.Int64("document_id", id),
			)
			continue
		}
		cited = append(cited, domain.AnswerDocument{
			ID:      doc.ID,
			Title:   doc.Title,
			Content: doc.Content,
		})
	}
	return cited
}
