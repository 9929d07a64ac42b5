package note

import (
	"context"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

// Extractor performs schema-constrained extraction.
type Extractor interface {
	Extract(ctx context.Context, req domain.ExtractionRequest, out any) error
}

// SummaryCache memoizes summaries by note content.
type SummaryCache interface {
	Get(ctx context.Context, note string) (domain.NoteSummary, bool)
	Set(ctx context.Context, note string, summary domain.NoteSummary)
}
