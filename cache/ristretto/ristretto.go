// Package ristretto adapts github.com/dgraph-io/ristretto to cache.Cache.
package ristretto

import (
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/ambiyansyah-risyal/fetchgate/cache"
)

var _ cache.Cache = (*Cache)(nil)

// Config sizes the underlying ristretto cache.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultConfig sizes the cache for roughly 10k entries of cost 1.
func DefaultConfig() Config {
	return Config{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
	}
}

// Cache is a cache.Cache backed by ristretto.
type Cache struct {
	c *rc.Cache
}

// New builds a cache from cfg. Every field must be positive.
func New(cfg Config) (*Cache, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	// metrics back Len, so they are always on
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (p *Cache) Get(key string) (any, bool) {
	return p.c.Get(key)
}

// Set waits for the write buffer to drain so a value is readable as soon as
// Set returns. Ristretto treats ttl 0 as "never expires", so ttl <= 0 deletes.
//
// Ristretto's admission policy may reject a write, either when the buffer is
// contended or when the cache is full and the key loses to a resident. A
// rejected value is simply not cached and the next Read fetches again. Size
// MaxCost well above the working set when one fetch per lifetime matters.
func (p *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		p.Delete(key)
		return
	}
	p.c.SetWithTTL(key, value, 1, ttl)
	p.c.Wait()
}

func (p *Cache) Delete(key string) {
	p.c.Del(key)
	p.c.Wait()
}

func (p *Cache) Clear() {
	p.c.Clear()
}

// Len is approximate: it counts admissions minus evictions and ignores
// explicit deletes.
func (p *Cache) Len() int {
	m := p.c.Metrics
	if m == nil {
		return 0
	}
	added, evicted := m.KeysAdded(), m.KeysEvicted()
	if evicted >= added {
		return 0
	}
	return int(added - evicted)
}

func (p *Cache) Close() {
	p.c.Wait()
	p.c.Close()
}

// Metrics exposes ristretto's own counters.
func (p *Cache) Metrics() *rc.Metrics { return p.c.Metrics }
