// Package notecache memoizes note summaries in a key-value store, keyed by
// an MD5 hash of the note content.
package notecache

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/shaiyon/AI-Engineer-Take-Home/internal/db"
	"github.com/shaiyon/AI-Engineer-Take-Home/internal/domain"
)

const keySuffix = "note_summary:"

// store is the consumer interface for the summary cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache stores note summaries keyed by content hash. Store failures are
// logged and reported as misses so a broken cache never blocks summarization.
type Cache struct {
	store     store
	keyPrefix string
	logger    *zap.Logger
}

// New creates a note summary cache. keyPrefix namespaces all redis keys.
func New(s store, keyPrefix string, logger *zap.Logger) *Cache {
	return &Cache{store: s, keyPrefix: keyPrefix, logger: logger}
}

// Get returns the cached summary for note, if one exists.
func (c *Cache) Get(ctx context.Context, note string) (domain.NoteSummary, bool) {
	key := c.key(note)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("note cache read failed", zap.Error(err))
		}
		return domain.NoteSummary{}, false
	}

	var summary domain.NoteSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.Warn("note cache entry corrupt, ignoring", zap.String("key", key), zap.Error(err))
		return domain.NoteSummary{}, false
	}
	return summary, true
}

// Set stores a summary for note. Failures are logged, not returned.
func (c *Cache) Set(ctx context.Context, note string, summary domain.NoteSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		c.logger.Warn("note cache marshal failed", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, c.key(note), data); err != nil {
		c.logger.Warn("note cache write failed", zap.Error(err))
	}
}

// key derives the cache key from the MD5 hex digest of the note content.
func (c *Cache) key(note string) string {
	sum := md5.Sum([]byte(note)) //nolint:gosec // content fingerprint
	return c.keyPrefix + keySuffix + hex.EncodeToString(sum[:])
}
