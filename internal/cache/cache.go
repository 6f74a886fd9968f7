package cache

import (
	"sync/atomic"
	"time"
)

// DefaultTTL is how long a cached listing is served without a refresh.
const DefaultTTL = 5 * time.Second

// Entry is one immutable cached value and the time it was stored.
type Entry[T any] struct {
	Value    T
	CachedAt time.Time
}

// IsStale returns true if the entry is at least ttl old at now.
func (e *Entry[T]) IsStale(now time.Time, ttl time.Duration) bool {
	if e == nil || e.CachedAt.IsZero() {
		return true
	}
	return now.Sub(e.CachedAt) >= ttl
}

// Slot holds at most one Entry. Store and Clear replace the whole entry
// atomically, so readers see either the old or the new (value, time) pair.
type Slot[T any] struct {
	p atomic.Pointer[Entry[T]]
}

// Load returns the current entry, or nil if the slot is empty.
func (s *Slot[T]) Load() *Entry[T] {
	return s.p.Load()
}

// Store replaces the slot contents with v cached at the given time.
func (s *Slot[T]) Store(v T, at time.Time) *Entry[T] {
	e := &Entry[T]{Value: v, CachedAt: at}
	s.p.Store(e)
	return e
}

// Clear empties the slot.
func (s *Slot[T]) Clear() {
	s.p.Store(nil)
}

// Fresh returns the entry if it exists and is younger than ttl.
func (s *Slot[T]) Fresh(now time.Time, ttl time.Duration) (*Entry[T], bool) {
	e := s.p.Load()
	if e.IsStale(now, ttl) {
		return e, false
	}
	return e, true
}
