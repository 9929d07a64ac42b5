package answer

import (
	"context"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher returns the nearest stored documents for a query vector,
// ordered by descending similarity, at most limit entries, possibly empty.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]domain.RetrievedDocument, error)
}

// Extractor performs schema-constrained extraction. It returns a value of the
// requested shape or fails; retries are its own concern.
type Extractor interface {
	Extract(ctx context.Context, req domain.ExtractionRequest, out any) error
}
