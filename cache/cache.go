// Package cache defines the value cache consumed by fetchgate and ships a
// sharded in-memory implementation.
//
// Values are stored already decoded; keys are opaque strings (fetchgate uses
// the request URL). An entry is visible only until its absolute expiry.
package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

// Cache is the storage boundary used by the request coordinator.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns a live value for key.
	Get(key string) (any, bool)
	// Set stores value until now+ttl. A ttl <= 0 must leave no visible entry.
	Set(key string, value any, ttl time.Duration)
	// Delete evicts key if present.
	Delete(key string)
	// Clear evicts everything.
	Clear()
	// Len reports the number of stored entries, live or not yet swept.
	Len() int
}

// Entry is a stored value and its absolute expiry.
type Entry struct {
	Value     any
	ExpiresAt time.Time
}

// Expired reports whether the entry is no longer visible at now.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

const defaultShards = 16

// InMemoryCache is a process-local Cache split into fnv-hashed shards.
type InMemoryCache struct {
	shards    []*cacheShard
	numShards int
	now       func() time.Time
}

type cacheShard struct {
	mu    sync.RWMutex
	store map[string]*Entry
}

// NewInMemoryCache returns an empty cache with 16 shards.
func NewInMemoryCache() *InMemoryCache {
	return NewInMemoryCacheWithShards(defaultShards)
}

// NewInMemoryCacheWithShards returns an empty cache with n shards (minimum 1).
func NewInMemoryCacheWithShards(n int) *InMemoryCache {
	if n < 1 {
		n = 1
	}
	shards := make([]*cacheShard, n)
	for i := range shards {
		shards[i] = &cacheShard{
			store: make(map[string]*Entry),
		}
	}
	return &InMemoryCache{
		shards:    shards,
		numShards: n,
		now:       time.Now,
	}
}

func (c *InMemoryCache) getShard(key string) *cacheShard {
	hash := fnv.New32a()
	hash.Write([]byte(key))
	return c.shards[hash.Sum32()%uint32(c.numShards)]
}

func (c *InMemoryCache) Get(key string) (any, bool) {
	shard := c.getShard(key)
	shard.mu.RLock()
	entry, exists := shard.store[key]
	shard.mu.RUnlock()
	if !exists {
		return nil, false
	}

	if entry.Expired(c.now()) {
		shard.mu.Lock()
		if shard.store[key] == entry {
			delete(shard.store, key)
		}
		shard.mu.Unlock()
		return nil, false
	}

	return entry.Value, true
}

func (c *InMemoryCache) Set(key string, value any, ttl time.Duration) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if ttl <= 0 {
		delete(shard.store, key)
		return
	}
	shard.store[key] = &Entry{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
}

func (c *InMemoryCache) Delete(key string) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	delete(shard.store, key)
}

func (c *InMemoryCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.store = make(map[string]*Entry)
		shard.mu.Unlock()
	}
}

func (c *InMemoryCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.store)
		shard.mu.RUnlock()
	}
	return total
}

// Sweep drops every expired entry and returns how many were removed.
func (c *InMemoryCache) Sweep() int {
	now := c.now()
	removed := 0
	for _, shard := range c.shards {
		shard.mu.Lock()
		for k, e := range shard.store {
			if e.Expired(now) {
				delete(shard.store, k)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}
