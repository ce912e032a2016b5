package embedding

import (
	"context"
	"crypto/sha256"
	"sync"
)

// Cached memoizes vectors of an underlying embedder by text digest.
// It is safe for concurrent use.
type Cached struct {
	next Embedder

	mu      sync.RWMutex
	vectors map[[sha256.Size]byte][]float32
}

func NewCached(next Embedder) *Cached {
	return &Cached{next: next, vectors: make(map[[sha256.Size]byte][]float32)}
}

func (c *Cached) Dimension() int { return c.next.Dimension() }

// Embed returns the memoized vector for text or asks the wrapped embedder.
// Failures are not memoized.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if isBlank(text) {
		return Zero(c.Dimension()), nil
	}

	key := sha256.Sum256([]byte(text))

	c.mu.RLock()
	vec, ok := c.vectors[key]
	c.mu.RUnlock()
	if ok {
		return vec, nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.vectors[key] = vec
	c.mu.Unlock()
	return vec, nil
}

// Len returns the number of memoized vectors.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}
