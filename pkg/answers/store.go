package answers

import "sync"

// Listener receives the previous and current snapshot after every write.
type Listener func(prev, next *Set)

// Store owns the current answer snapshot. Writes swap in a new Set rather
// than mutating the existing one.
type Store struct {
	mu        sync.RWMutex
	current   *Set
	revision  uint64
	listeners []Listener
}

// NewStore seeds a store with an initial snapshot (nil starts empty).
func NewStore(initial *Set) *Store {
	if initial == nil {
		initial = Empty()
	}
	return &Store{current: initial}
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Revision reports how many writes the store has accepted.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Set writes one key and returns the new snapshot.
func (s *Store) Set(key string, value Value) *Set {
	return s.Update(func(cur *Set) *Set {
		return cur.With(key, value)
	})
}

// Replace swaps the whole snapshot, as done when prefill data arrives.
func (s *Store) Replace(next *Set) *Set {
	return s.Update(func(*Set) *Set {
		if next == nil {
			return Empty()
		}
		return next
	})
}

// Update applies fn to the current snapshot and stores its result. Returning
// the same snapshot is a no-op and does not notify listeners.
func (s *Store) Update(fn func(*Set) *Set) *Set {
	s.mu.Lock()
	prev := s.current
	next := fn(prev)
	if next == nil || next.Same(prev) {
		s.mu.Unlock()
		return prev
	}
	s.current = next
	s.revision++
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(prev, next)
	}
	return next
}

// Subscribe registers a listener invoked synchronously after each write.
func (s *Store) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}
