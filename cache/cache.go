package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultTTL is how long entries stay valid when the caller does not override it.
const DefaultTTL = time.Hour

// Fingerprint computes the SHA-256 hex digest of serialized request content.
// Byte-identical content always maps to the same fingerprint.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

type entry struct {
	value    string
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.storedAt.Add(e.ttl))
}

// Cache is an in-memory response cache keyed by content fingerprint. Expiry
// is checked on read; an expired entry behaves exactly like a missing one and
// stays in the map until the next Set overwrites it. The map is unbounded.
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	now func() time.Time
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value stored under fingerprint if it exists and has not
// expired yet.
func (c *Cache) Get(fingerprint string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	if !ok || e.expired(c.now()) {
		return "", false
	}
	return e.value, true
}

// Set stores value under fingerprint with the given TTL, overwriting any
// previous entry. A non-positive ttl falls back to DefaultTTL. Last write
// wins under concurrent calls.
func (c *Cache) Set(fingerprint, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.entries[fingerprint] = entry{value: value, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
