// Package cache provides the in-memory TTL cache and request-coalescing
// layer that fronts the expensive portfolio derivations. It is the only
// component with concurrency concerns: the engine itself is a pure function.
package cache

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Kind classifies cached data by how fast it goes stale.
type Kind string

const (
	// Transactions and Symbols are slow-changing reference data.
	Transactions Kind = "transactions"
	Symbols      Kind = "symbols"
	// Quotes are market-price-like data.
	Quotes Kind = "quotes"
	// Metrics are derived portfolio aggregates.
	Metrics Kind = "metrics"
)

// TTL returns the default time-to-live policy for the kind.
func (k Kind) TTL() time.Duration {
	switch k {
	case Quotes:
		return time.Minute
	case Metrics:
		return 5 * time.Minute
	default:
		return 30 * time.Minute
	}
}

// Key identifies one cached derivation. Symbol and Currency are optional
// depending on the kind.
type Key struct {
	Kind     Kind
	User     string
	Symbol   string
	Currency string
}

// String returns the canonical form of the key, used for coalescing and
// prefix invalidation.
func (k Key) String() string {
	return string(k.Kind) + "/" + k.User + "/" + k.Symbol + "/" + k.Currency
}

type entry struct {
	key     Key
	value   any
	expires time.Time
}

// Cache is an in-memory TTL cache with in-flight request coalescing.
//
// Construct one at process start and pass it by handle; there is no package
// singleton. All methods are safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for the key if present and not expired.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under the key with the given TTL. A non-positive ttl
// uses the kind's default policy. Expired entries are swept opportunistically.
func (c *Cache) Set(key Key, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = key.Kind.TTL()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	c.entries[key.String()] = entry{key: key, value: value, expires: c.now().Add(ttl)}
}

// sweepLocked drops expired entries. Caller holds the write lock.
func (c *Cache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}

// GetOrFetch returns the cached value for the key, or runs the producer to
// compute it. Concurrent callers racing on the same key share a single
// in-flight computation and all receive its result or its error. Errors are
// never cached, so the next call re-attempts; the in-flight registry entry is
// released when the computation settles, success or failure.
func (c *Cache) GetOrFetch(key Key, ttl time.Duration, produce func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// A racing caller may have populated the entry while we waited for
		// the flight lock.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := produce()
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate removes the entry for a single key.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key.String())
}

// InvalidatePrefix removes every entry whose canonical key starts with the
// given prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// InvalidateUser removes every entry belonging to the user, across all kinds.
// Call it whenever the user's event log changes.
func (c *Cache) InvalidateUser(user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.key.User == user {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of entries currently held, expired included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
