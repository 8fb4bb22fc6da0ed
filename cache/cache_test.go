package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestSlotTTL(t *testing.T) {
	t.Parallel()

	clock := newClock()
	s := NewSlot[string](10*time.Minute, WithClock(clock.Now))

	_, ok := s.Get()
	require.False(t, ok)

	s.Set("v1")
	v, ok := s.Get()
	require.True(t, ok)
	require.Equal(t, "v1", v)

	clock.Advance(10*time.Minute - time.Millisecond)
	_, ok = s.Get()
	require.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = s.Get()
	require.False(t, ok)

	v, ok = s.Last()
	require.True(t, ok)
	require.Equal(t, "v1", v)
}

func TestSlotInvalidateAndClear(t *testing.T) {
	t.Parallel()

	s := NewSlot[int](time.Hour)
	s.Set(1)
	s.Invalidate()
	require.True(t, s.ForceRefresh())

	_, ok := s.Get()
	require.False(t, ok)
	v, ok := s.Last()
	require.True(t, ok)
	require.Equal(t, 1, v)

	s.Set(2)
	require.False(t, s.ForceRefresh())
	v, ok = s.Get()
	require.True(t, ok)
	require.Equal(t, 2, v)

	s.Clear()
	_, ok = s.Last()
	require.False(t, ok)
	require.Equal(t, false, s.Stats()["filled"])
}

func TestCachedHitsLoaderOncePerTTL(t *testing.T) {
	t.Parallel()

	clock := newClock()
	calls := 0
	c := NewCached("config", NewSlot[string](10*time.Minute, WithClock(clock.Now)),
		func(context.Context) (string, error) {
			calls++
			return "cfg", nil
		}, false, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := c.Get(ctx, false)
		require.NoError(t, err)
		require.Equal(t, "cfg", v)
	}
	require.Equal(t, 1, calls)

	clock.Advance(10 * time.Minute)
	_, err := c.Get(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	_, err = c.Get(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestCachedServeStale(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	fail := false
	loader := func(context.Context) (string, error) {
		if fail {
			return "", boom
		}
		return "fresh", nil
	}

	stale := NewCached("profile", NewSlot[string](time.Hour), loader, true, nil)
	strict := NewCached("config", NewSlot[string](time.Hour), loader, false, nil)
	ctx := context.Background()

	// nothing cached yet: the error surfaces
	fail = true
	_, err := stale.Get(ctx, true)
	require.ErrorIs(t, err, boom)

	fail = false
	_, err = stale.Get(ctx, false)
	require.NoError(t, err)
	_, err = strict.Get(ctx, false)
	require.NoError(t, err)

	fail = true
	v, err := stale.Get(ctx, true)
	require.NoError(t, err)
	require.Equal(t, "fresh", v)

	_, err = strict.Get(ctx, true)
	require.ErrorIs(t, err, boom)
}
