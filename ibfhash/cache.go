package ibfhash

import lru "github.com/hashicorp/golang-lru/v2"

// Cached wraps a Hasher with an LRU memoization layer, for workloads that
// repeatedly hash the same handful of distinct values (common when a
// bounded universe of values is reconciled across many rounds).
type Cached struct {
	inner Hasher
	cache *lru.Cache[string, uint32]
}

// NewCached wraps inner with an LRU cache holding up to size distinct
// value hashes.
func NewCached(inner Hasher, size int) *Cached {
	cache, err := lru.New[string, uint32](size)
	if err != nil {
		// Only returned for a non-positive size; callers that hit this
		// have a configuration bug, not a runtime condition to recover
		// from.
		panic(err)
	}
	return &Cached{inner: inner, cache: cache}
}

// Hash implements Hasher.
func (c *Cached) Hash(value []byte) uint32 {
	key := string(value)
	if h, ok := c.cache.Get(key); ok {
		return h
	}
	h := c.inner.Hash(value)
	c.cache.Add(key, h)
	return h
}
