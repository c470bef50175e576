// Package tokens keeps a per-user Spotify access token valid across badge
// requests while minimizing calls to the token store and the refresh
// endpoint.
package tokens

import (
	"sync"
	"time"

	"github.com/desertthunder/tunecard/internal/models"
)

// Cache is a process-lifetime mapping from user id to token record.
//
// Lookups are expiry-aware: an entry whose expiry is unset or has passed
// reads as a miss but stays in the map until overwritten or deleted. There
// is no capacity bound; the population is the set of active badge users.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.TokenRecord
}

// NewCache creates an empty token cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]models.TokenRecord)}
}

// Get returns the cached record for uid, or ok=false when the entry is
// absent or expired at the given instant.
func (c *Cache) Get(uid string, now time.Time) (models.TokenRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.entries[uid]
	if !ok || record.Expired(now) {
		return models.TokenRecord{}, false
	}

	return record, true
}

// Put inserts or overwrites the record for uid.
func (c *Cache) Put(uid string, record models.TokenRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uid] = record
}

// Delete removes the entry for uid, if any.
func (c *Cache) Delete(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, uid)
}

// Len reports the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
