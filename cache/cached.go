package cache

import (
	"context"
	"log/slog"
)

// Loader fetches a fresh value
type Loader[T any] func(ctx context.Context) (T, error)

// Cached wraps a Loader with a Slot
type Cached[T any] struct {
	name       string
	slot       *Slot[T]
	load       Loader[T]
	serveStale bool
	log        *slog.Logger
}

// NewCached creates a cached loader. With serveStale, a failed load returns
// the last stored value when there is one instead of the error.
func NewCached[T any](name string, slot *Slot[T], load Loader[T], serveStale bool, log *slog.Logger) *Cached[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Cached[T]{
		name:       name,
		slot:       slot,
		load:       load,
		serveStale: serveStale,
		log:        log,
	}
}

// Get returns the cached value when valid and force is false, otherwise
// loads and stores a fresh one. Concurrent misses each call the loader.
func (c *Cached[T]) Get(ctx context.Context, force bool) (T, error) {
	// Check cache first
	if !force {
		if v, ok := c.slot.Get(); ok {
			return v, nil
		}
	}

	// Cache miss - load from backend
	v, err := c.load(ctx)
	if err != nil {
		if c.serveStale {
			if last, ok := c.slot.Last(); ok {
				c.log.Warn("cache_refresh_failed_serving_stale",
					slog.String("cache", c.name),
					slog.String("err", err.Error()),
				)
				return last, nil
			}
		}
		var zero T
		return zero, err
	}

	c.slot.Set(v)
	return v, nil
}

// Slot exposes the underlying slot
func (c *Cached[T]) Slot() *Slot[T] {
	return c.slot
}
