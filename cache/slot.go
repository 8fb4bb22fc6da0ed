package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with the time it was stored
type Entry[T any] struct {
	Value    T
	StoredAt time.Time
}

// Age returns how long ago the entry was stored
func (e *Entry[T]) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Slot is a single-value memo with a fixed TTL and a force refresh flag.
// A value is served while it is younger than the TTL and no refresh has been
// forced.
type Slot[T any] struct {
	mu           sync.RWMutex
	ttl          time.Duration
	now          func() time.Time
	entry        *Entry[T]
	forceRefresh bool
}

// Option configures a Slot
type Option func(*slotOptions)

type slotOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(o *slotOptions) { o.now = now }
}

// NewSlot creates an empty slot
func NewSlot[T any](ttl time.Duration, opts ...Option) *Slot[T] {
	o := slotOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Slot[T]{ttl: ttl, now: o.now}
}

// Get returns the cached value when it is still valid
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil || s.forceRefresh || s.entry.Age(s.now()) >= s.ttl {
		var zero T
		return zero, false
	}
	return s.entry.Value, true
}

// Last returns the cached value regardless of age or forced refresh
func (s *Slot[T]) Last() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil {
		var zero T
		return zero, false
	}
	return s.entry.Value, true
}

// Set stores v and clears any forced refresh
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &Entry[T]{Value: v, StoredAt: s.now()}
	s.forceRefresh = false
}

// Invalidate forces the next Get to miss while keeping the value for Last
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceRefresh = true
}

// ForceRefresh reports whether a refresh has been forced
func (s *Slot[T]) ForceRefresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forceRefresh
}

// Clear drops the value
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
	s.forceRefresh = false
}

// Stats returns cache statistics
func (s *Slot[T]) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"ttl_seconds":   int(s.ttl.Seconds()),
		"filled":        s.entry != nil,
		"force_refresh": s.forceRefresh,
	}
	if s.entry != nil {
		stats["age_seconds"] = int(s.entry.Age(s.now()).Seconds())
	}
	return stats
}
