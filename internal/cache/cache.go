// Package cache holds monitor-produced intel bundles in memory with
// per-entry expiry, so dashboard reads never touch the analysis pipeline.
package cache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/yava-code/weatherAI/internal/weather"
)

// KeyPrefix namespaces intel entries, matching the wire-level cache key
// contract ("city_intel:" + city name).
const KeyPrefix = "city_intel:"

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// IntelCache is a concurrency-safe TTL cache of JSON-serialized bundles.
// Each city's entry has exactly one writer cadence (the monitor); readers
// only read, so entries never need per-key coordination beyond the map
// lock.
type IntelCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty cache.
func New() *IntelCache {
	return &IntelCache{entries: make(map[string]entry)}
}

// Set stores a bundle for the city, replacing any prior entry.
func (c *IntelCache) Set(city string, bundle *weather.IntelBundle, ttl time.Duration) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[KeyPrefix+city] = entry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the cached bundle for the city, if present and fresh.
func (c *IntelCache) Get(city string) (*weather.IntelBundle, bool) {
	c.mu.RLock()
	e, ok := c.entries[KeyPrefix+city]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}

	var bundle weather.IntelBundle
	if err := json.Unmarshal(e.payload, &bundle); err != nil {
		return nil, false
	}
	return &bundle, true
}

// Purge drops expired entries. The monitor calls this opportunistically
// at the end of each sweep.
func (c *IntelCache) Purge() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
