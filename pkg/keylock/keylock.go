// Package keylock provides mutual exclusion per string key.
package keylock

import "sync"

// Mutex hands out one lock per key and forgets keys nobody holds.
type Mutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates a Mutex.
func New() *Mutex {
	return &Mutex{locks: make(map[string]*entry)}
}

// Lock blocks until the key is free and returns the func that frees it.
// Calling the returned func more than once is a no-op.
func (k *Mutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = new(entry)
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.locks, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len is the number of keys currently held or waited on.
func (k *Mutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
