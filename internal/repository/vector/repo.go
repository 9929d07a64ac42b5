// Package vector stores document vectors as redis hashes under an FT index
// and answers cosine-similarity KNN queries against them.
package vector

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/db"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

const (
	indexSuffix  = "idx"
	fieldTitle   = "title"
	fieldContent = "content"
	fieldVector  = "vector"
)

// store is the consumer interface for vector index operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo is the vector index repository for the documents collection.
type Repo struct {
	store     store
	keyPrefix string
	dims      int
}

// New creates a vector repository. keyPrefix namespaces all redis keys.
func New(s store, keyPrefix string, dims int) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, dims: dims}
}

// EnsureIndex creates the documents FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.pointPrefix()},
		Fields: []db.IndexField{
			{Name: fieldTitle, Type: db.IndexFieldText},
			{Name: fieldContent, Type: db.IndexFieldText},
			{
				Name:           fieldVector,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      r.dims,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert writes one document point: id, payload, and its vector.
func (r *Repo) Upsert(ctx context.Context, id int64, title, content string, vec []float32) error {
	if r.dims > 0 && len(vec) != r.dims {
		return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vec), r.dims)
	}

	fields := map[string]string{
		fieldTitle:   title,
		fieldContent: content,
		fieldVector:  vectorToBytes(vec),
	}
	if err := r.store.HSet(ctx, r.pointKey(id), fields); err != nil {
		return fmt.Errorf("upsert point %d: %w", id, err)
	}
	return nil
}

// Delete removes a document point. Deleting an absent point is not an error.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	if err := r.store.Del(ctx, r.pointKey(id)); err != nil {
		return fmt.Errorf("delete point %d: %w", id, err)
	}
	return nil
}

// Search returns up to limit nearest documents by cosine similarity,
// ordered best-first. Hits whose id cannot be recovered from the key are skipped.
func (r *Repo) Search(ctx context.Context, vec []float32, limit int) ([]domain.RetrievedDocument, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vec,
		K:            limit,
		ReturnFields: []string{fieldTitle, fieldContent, "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	docs := make([]domain.RetrievedDocument, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id, ok := r.idFromKey(entry.Key)
		if !ok {
			continue
		}
		docs = append(docs, domain.RetrievedDocument{
			ID:      id,
			Title:   entry.Fields[fieldTitle],
			Content: entry.Fields[fieldContent],
			Score:   entry.Score,
		})
	}
	return docs, nil
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "documents:" + indexSuffix
}

func (r *Repo) pointPrefix() string {
	return r.keyPrefix + "documents:"
}

func (r *Repo) pointKey(id int64) string {
	return r.pointPrefix() + strconv.FormatInt(id, 10)
}

func (r *Repo) idFromKey(key string) (int64, bool) {
	suffix, ok := strings.CutPrefix(key, r.pointPrefix())
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// vectorToBytes encodes a float32 slice as little-endian binary for HSET.
func vectorToBytes(vec []float32) string {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return string(buf)
}
