// Package keylock provides per-key mutual exclusion.
//
// A KeyLock is a registry of mutexes keyed by an arbitrary string. Locking
// the same key from two goroutines serializes them; distinct keys never
// contend. Entries are reference counted and removed once the last holder
// releases, so a long-running process does not accumulate one mutex per key
// it ever touched.
package keylock

import "sync"

// KeyLock is a registry of reference-counted mutexes keyed by string.
// The zero value is not usable; create instances with New.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// Handle represents a held lock for one key. Unlock is safe to call more
// than once; only the first call releases the lock.
type Handle struct {
	lock *KeyLock
	ent  *entry
	key  string
	once sync.Once
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{entries: make(map[string]*entry)}
}

// Lock blocks until no other goroutine holds the lock for key, then
// returns a handle for releasing it. Every exit path of the critical
// section must call Unlock on the handle.
func (l *KeyLock) Lock(key string) *Handle {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return &Handle{lock: l, ent: e, key: key}
}

// Unlock releases the lock. Repeated calls are no-ops.
func (h *Handle) Unlock() {
	h.once.Do(func() {
		h.ent.mu.Unlock()

		h.lock.mu.Lock()
		h.ent.refs--
		if h.ent.refs == 0 {
			delete(h.lock.entries, h.key)
		}
		h.lock.mu.Unlock()
	})
}

// Len returns the number of keys currently tracked.
func (l *KeyLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
