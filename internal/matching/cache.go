package matching

import "sync"

// Cache keeps the most recent batch keyed by profile fingerprint.
// It does not track the job collection; call Clear when it changes.
type Cache struct {
	mu          sync.Mutex
	fingerprint string
	batch       *Batch
}

// Get returns the cached batch when fingerprint matches the stored one.
func (c *Cache) Get(fingerprint string) (*Batch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.batch == nil || c.fingerprint != fingerprint {
		return nil, false
	}
	return c.batch, true
}

// Put replaces the cached entry.
func (c *Cache) Put(fingerprint string, b *Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fingerprint = fingerprint
	c.batch = b
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fingerprint = ""
	c.batch = nil
}
