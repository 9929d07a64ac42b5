package document

import (
	"context"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

// Repository is the relational storage contract for documents.
type Repository interface {
	Create(ctx context.Context, title, content string, inVectorDB bool) (domain.Document, error)
	Get(ctx context.Context, id int64) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Patch(ctx context.Context, id int64, p domain.DocumentPatch) (domain.Document, error)
	Delete(ctx context.Context, id int64) error
}

// VectorIndex stores document vectors for similarity search.
type VectorIndex interface {
	Upsert(ctx context.Context, id int64, title, content string, vec []float32) error
	Delete(ctx context.Context, id int64) error
}

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
