// Package note extracts structured summaries from free-text clinical notes,
// memoized by content hash.
package note

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/metrics"
)

const schemaName = "note_summary"

const systemPrompt = `You are a highly trained medical expert with 25 years of experience.
Your task is to extract and structure critical information from the provided medical document.
Be concise, precise, and factual in your extractions.
Avoid non-factual information, exposition, and hyperbole.

Extract the following information in the specified format exactly:
` + "`summary`" + `: string - A ~100 word summary of the document.
` + "`layperson_paraphrase`" + `: string - A ~50-100 word layperson's paraphrase of the summary.
` + "`keywords`" + `: list of string - A list of keywords to help categorize the document. You can be generous with the number of keywords, up to around 25.
` + "`patient_chief_complaint`" + `: string or null - One sentence about the patient's chief complaint, if available.`

var summarySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"layperson_paraphrase": {"type": "string"},
		"keywords": {"type": "array", "items": {"type": "string"}},
		"patient_chief_complaint": {"type": ["string", "null"]}
	},
	"required": ["summary", "layperson_paraphrase", "keywords", "patient_chief_complaint"],
	"additionalProperties": false
}`)

// Service summarizes notes with cache-aside memoization.
type Service struct {
	extract Extractor
	cache   SummaryCache
}

// New creates a note summarization service.
func New(extract Extractor, cache SummaryCache) *Service {
	return &Service{extract: extract, cache: cache}
}

// Summarize returns the structured summary of text. Identical notes are
// served from the cache without a provider call. Notes shorter than
// domain.MinNoteLength are rejected with domain.ErrNoteTooShort.
//
// TODO: stronger validation around note content to prevent hallucinations.
func (s *Service) Summarize(ctx context.Context, text string) (domain.NoteSummary, error) {
	if len(text) < domain.MinNoteLength {
		return domain.NoteSummary{}, fmt.Errorf(
			"note must be at least %d characters long: %w",
			domain.MinNoteLength, domain.ErrNoteTooShort,
		)
	}

	if summary, ok := s.cache.Get(ctx, text); ok {
		metrics.NoteCacheTotal.WithLabelValues("hit").Inc()
		return summary, nil
	}
	metrics.NoteCacheTotal.WithLabelValues("miss").Inc()

	req := domain.ExtractionRequest{
		Name:   schemaName,
		System: systemPrompt,
		User:   text,
		Schema: summarySchema,
	}

	var summary domain.NoteSummary
	if err := s.extract.Extract(ctx, req, &summary); err != nil {
		return domain.NoteSummary{}, fmt.Errorf("summarize note: %w", err)
	}

	s.cache.Set(ctx, text, summary)
	return summary, nil
}
