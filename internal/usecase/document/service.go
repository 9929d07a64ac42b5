// Package document handles document CRUD with optional vectorization into
// the similarity index.
package document

import (
	"context"
	"fmt"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

// Service handles document CRUD.
type Service struct {
	repo  Repository
	index VectorIndex
	embed Embedder
}

// New creates a document service.
func New(repo Repository, index VectorIndex, embed Embedder) *Service {
	return &Service{repo: repo, index: index, embed: embed}
}

// Create stores a document. When addToVectorDB is set, the document is also
// embedded and upserted into the vector index under its assigned id.
//
// TODO: roll back the relational row if the vector upsert fails, so the two
// stores cannot drift apart.
func (s *Service) Create(ctx context.Context, title, content string, addToVectorDB bool) (domain.Document, error) {
	doc, err := s.repo.Create(ctx, title, content, addToVectorDB)
	if err != nil {
		return domain.Document{}, fmt.Errorf("create document: %w", err)
	}

	if addToVectorDB {
		emb, err := s.embed.Embed(ctx, embeddingText(doc.Title, doc.Content))
		if err != nil {
			return domain.Document{}, fmt.Errorf("vectorize document %d: %w", doc.ID, err)
		}
		if err := s.index.Upsert(ctx, doc.ID, doc.Title, doc.Content, emb.Embedding); err != nil {
			return domain.Document{}, fmt.Errorf("index document %d: %w", doc.ID, err)
		}
	}

	return doc, nil
}

// Get returns one document by id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns all documents.
func (s *Service) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Patch applies a partial update to the relational row. The vector index is
// left untouched; re-vectorization requires recreating the document.
func (s *Service) Patch(ctx context.Context, id int64, p domain.DocumentPatch) (domain.Document, error) {
	doc, err := s.repo.Patch(ctx, id, p)
	if err != nil {
		return domain.Document{}, fmt.Errorf("patch document: %w", err)
	}
	return doc, nil
}

// Delete removes the document and, if it was vectorized, its index point.
func (s *Service) Delete(ctx context.Context, id int64) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if doc.InVectorDB {
		if err := s.index.Delete(ctx, id); err != nil {
			return fmt.Errorf("deindex document %d: %w", id, err)
		}
	}
	return nil
}

// embeddingText is the canonical text embedded for a document.
func embeddingText(title, content string) string {
	return fmt.Sprintf("**%s**\n\n%s", title, content)
}
