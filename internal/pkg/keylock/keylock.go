// Package keylock provides mutual exclusion scoped to a string key.
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Map hands out one critical section per key. Holders of different keys never
// wait on each other; the internal mutex only guards the entry table.
type Map struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Map {
	return &Map{entries: make(map[string]*entry)}
}

// Lock blocks until the section for key is free or ctx is done. The returned
// func releases the section and must be called exactly once.
func (m *Map) Lock(ctx context.Context, key string) (func(), error) {
	e := m.acquire(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.release(key, e)
		})
	}, nil
}

// Len reports how many keys are currently held or waited on.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Map) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Map) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}
