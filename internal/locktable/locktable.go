// Package locktable keeps one mutual-exclusion lock per (key, verb) pair.
//
// Entries are created lazily under a single short-held gate mutex and are
// never removed, so the table grows with the number of distinct keys the
// process touches. Each lock is a weight-1 semaphore: waiters are admitted in
// FIFO order and can abandon the wait through their context.
package locktable

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Table maps key -> verb -> lock.
type Table struct {
	gate  sync.Mutex
	locks map[string]map[string]*semaphore.Weighted
}

// New returns an empty table.
func New() *Table {
	return &Table{
		locks: make(map[string]map[string]*semaphore.Weighted),
	}
}

// lookup returns the lock for (key, verb), creating it if missing.
func (t *Table) lookup(key, verb string) *semaphore.Weighted {
	t.gate.Lock()
	defer t.gate.Unlock()

	verbs, ok := t.locks[key]
	if !ok {
		verbs = make(map[string]*semaphore.Weighted)
		t.locks[key] = verbs
	}
	l, ok := verbs[verb]
	if !ok {
		l = semaphore.NewWeighted(1)
		verbs[verb] = l
	}
	return l
}

// Acquire blocks until the (key, verb) lock is held or ctx is done. On
// success the returned release func must be called exactly once. On failure
// the lock is not held and ctx.Err() is returned.
func (t *Table) Acquire(ctx context.Context, key, verb string) (release func(), err error) {
	l := t.lookup(key, verb)
	if err := l.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { l.Release(1) }) }, nil
}

// Len returns the number of (key, verb) locks created so far.
func (t *Table) Len() int {
	t.gate.Lock()
	defer t.gate.Unlock()

	n := 0
	for _, verbs := range t.locks {
		n += len(verbs)
	}
	return n
}
