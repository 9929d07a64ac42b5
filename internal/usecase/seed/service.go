// Package seed imports documents from local note files into the document
// store and the vector index.
package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

// DocumentCreator creates vectorized documents.
type DocumentCreator interface {
	Create(ctx context.Context, title, content string, addToVectorDB bool) (domain.Document, error)
}

// SeededDocument describes one imported document.
type SeededDocument struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Service imports *.txt notes from a directory. The first line of each file
// becomes the title, the remainder the content.
type Service struct {
	docs     DocumentCreator
	notesDir string
	logger   *zap.Logger
}

// New creates a seed service.
func New(docs DocumentCreator, notesDir string, logger *zap.Logger) *Service {
	return &Service{docs: docs, notesDir: notesDir, logger: logger}
}

// Seed imports every note file found in the configured directory, embedding
// each document into the vector index. A missing directory yields an empty
// result, not an error.
func (s *Service) Seed(ctx context.Context) ([]SeededDocument, error) {
	files, err := filepath.Glob(filepath.Join(s.notesDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan notes dir: %w", err)
	}
	sort.Strings(files)

	var seeded []SeededDocument
	for _, path := range files {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return seeded, fmt.Errorf("read note %s: %w", path, err)
		}

		title, content := splitNote(strings.TrimSpace(string(data)), filepath.Base(path))
		doc, err := s.docs.Create(ctx, title, content, true)
		if err != nil {
			return seeded, fmt.Errorf("seed note %s: %w", path, err)
		}

		s.logger.Info("seeded document",
			zap.Int64("id", doc.ID),
			zap.String("source", filepath.Base(path)),
		)
		seeded = append(seeded, SeededDocument{
			ID:     doc.ID,
			Title:  doc.Title,
			Source: filepath.Base(path),
		})
	}

	return seeded, nil
}

// splitNote derives (title, content) from note text: first line is the title,
// the rest is content. Empty notes fall back to the filename as title.
func splitNote(text, filename string) (string, string) {
	if text == "" {
		return filename, ""
	}
	title, content, found := strings.Cut(text, "\n")
	if !found {
		return title, ""
	}
	return title, content
}
