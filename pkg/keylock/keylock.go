// Package keylock provides mutual exclusion scoped to string keys.
// Entries are reference counted and released once no goroutine holds or waits on them.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Map hands out per-key mutexes. The zero value is ready to use.
type Map struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New creates an empty Map.
func New() *Map {
	return &Map{locks: make(map[string]*entry)}
}

// Lock blocks until the key is held by the caller and returns its release function.
func (m *Map) Lock(key string) (unlock func()) {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[string]*entry)
	}
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			m.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(m.locks, key)
			}
			m.mu.Unlock()
		})
	}
}

// Len reports how many keys are currently held or awaited.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
