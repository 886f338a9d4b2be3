package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kirillkom/context-store/internal/core/ports"
)

// CachedEmbedder keeps recently computed vectors in an LRU keyed by the
// sha256 of the input text.
type CachedEmbedder struct {
	next  ports.Embedder
	cache *lru.Cache[string, []float32]
}

func NewCachedEmbedder(next ports.Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{next: next, cache: cache}, nil
}

func (c *CachedEmbedder) Dimension() int {
	return c.next.Dimension()
}

func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if vector, ok := c.cache.Get(key); ok {
		return vector, nil
	}
	vector, err := c.next.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vector)
	return vector, nil
}

// Embed only forwards the texts that are not cached.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missing    []string
		missingPos []int
	)
	for i, text := range texts {
		if vector, ok := c.cache.Get(cacheKey(text)); ok {
			out[i] = vector
			continue
		}
		missing = append(missing, text)
		missingPos = append(missingPos, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := c.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vectors), len(missing))
	}
	for i, vector := range vectors {
		out[missingPos[i]] = vector
		c.cache.Add(cacheKey(missing[i]), vector)
	}
	return out, nil
}

func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
