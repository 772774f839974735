// Package cache provides the LRU caches shared by the CLI and the MCP server.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a thread-safe, size-bounded cache with string keys.
type LRU[V any] struct {
	cache *lru.Cache[string, V]
}

// New creates an LRU holding at most maxItems values.
func New[V any](maxItems int) (*LRU[V], error) {
	c, err := lru.New[string, V](maxItems)
	if err != nil {
		return nil, err
	}
	return &LRU[V]{cache: c}, nil
}

// Get retrieves a value by key.
func (c *LRU[V]) Get(key string) (V, bool) {
	return c.cache.Get(key)
}

// Put adds or updates a value.
func (c *LRU[V]) Put(key string, value V) {
	c.cache.Add(key, value)
}

// Remove drops a key, reporting whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	return c.cache.Remove(key)
}

// Len returns the current number of items in the cache.
func (c *LRU[V]) Len() int {
	return c.cache.Len()
}

// MediaCache remembers the file id the console assigned to an image, keyed
// by the image content, so the same cover is uploaded once.
type MediaCache struct {
	byHash *LRU[string]
}

// NewMediaCache creates a MediaCache holding at most maxItems uploads.
func NewMediaCache(maxItems int) (*MediaCache, error) {
	c, err := New[string](maxItems)
	if err != nil {
		return nil, err
	}
	return &MediaCache{byHash: c}, nil
}

// Lookup returns the id stored for data.
func (m *MediaCache) Lookup(data []byte) (string, bool) {
	return m.byHash.Get(ContentKey(data))
}

// Store records id for data.
func (m *MediaCache) Store(data []byte, id string) {
	m.byHash.Put(ContentKey(data), id)
}

// Forget drops every entry pointing at id, e.g. after the file was deleted.
func (m *MediaCache) Forget(id string) {
	for _, key := range m.byHash.cache.Keys() {
		if v, ok := m.byHash.cache.Peek(key); ok && v == id {
			m.byHash.Remove(key)
		}
	}
}

// Len returns the number of remembered uploads.
func (m *MediaCache) Len() int {
	return m.byHash.Len()
}

// ContentKey is the hex sha256 of data.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
