package singleflight

import (
	"context"
	"sync"
)

// Group manages a set of in-flight calls to prevent duplicate work.
// A key's slot is removed as soon as its call settles, so a failed call is
// never replayed to a later caller.
type Group[V any] struct {
	mu sync.Mutex
	m  map[string]*call[V]
}

// call represents an active function call.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error
	dups int
}

// New creates a new singleflight Group.
func New[V any]() *Group[V] {
	return &Group[V]{
		m: make(map[string]*call[V]),
	}
}

// Do executes and returns the results of the given function, making sure that
// only one execution is in-flight for a given key at a time. If a duplicate
// comes in, the duplicate caller waits for the original to complete and
// receives the same results. shared reports whether the result was handed to
// more than one caller.
//
// A waiting duplicate gives up when ctx is done and returns ctx.Err(); the
// original call keeps running for the remaining callers.
func (g *Group[V]) Do(ctx context.Context, key string, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), false
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.doCall(key, c, fn)

	g.mu.Lock()
	shared = c.dups > 0
	g.mu.Unlock()
	return c.val, c.err, shared
}

// doCall runs fn, publishes its result and frees the key. A panic in fn is
// surfaced to waiters as an error and re-raised in the owner.
func (g *Group[V]) doCall(key string, c *call[V], fn func() (V, error)) {
	normalReturn := false
	defer func() {
		if !normalReturn {
			c.err = errPanicked
		}
		g.mu.Lock()
		if g.m[key] == c {
			delete(g.m, key)
		}
		g.mu.Unlock()
		close(c.done)
	}()

	c.val, c.err = fn()
	normalReturn = true
}

// InFlight returns the number of keys currently being computed.
func (g *Group[V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
