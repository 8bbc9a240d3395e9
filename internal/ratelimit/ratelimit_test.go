package ratelimit_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markethub-essentials/backend/internal/ratelimit"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLimiter(clock *fakeClock) (*ratelimit.Limiter, *ratelimit.MemoryStore) {
	store := ratelimit.NewMemoryStore(ratelimit.WithClock(clock.Now))
	return ratelimit.New(store, 5, time.Hour, nil), store
}

func TestAllow_FixedWindow(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	limiter, _ := newLimiter(clock)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		assert.True(t, limiter.Allow(ctx, "1.2.3.4"), "call %d should be allowed", i)
		clock.Advance(time.Minute)
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4"), "6th call within the hour must be denied")
	assert.False(t, limiter.Allow(ctx, "1.2.3.4"), "denials do not reopen the window")

	// The window opened at 09:00; 10:00 is still inside it.
	clock.Advance(time.Hour - 5*time.Minute)
	assert.False(t, limiter.Allow(ctx, "1.2.3.4"), "a call exactly at resetTime is still in the window")

	clock.Advance(time.Nanosecond)
	assert.True(t, limiter.Allow(ctx, "1.2.3.4"), "first call after the window reopens it")
	for i := 2; i <= 5; i++ {
		assert.True(t, limiter.Allow(ctx, "1.2.3.4"), "fresh window call %d", i)
	}
	assert.False(t, limiter.Allow(ctx, "1.2.3.4"))
}

func TestAllow_IdentifiersAreIndependent(t *testing.T) {
	t.Parallel()

	limiter, _ := newLimiter(newFakeClock())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Allow(ctx, "a"))
	}
	assert.False(t, limiter.Allow(ctx, "a"))
	assert.True(t, limiter.Allow(ctx, "b"))
	assert.True(t, limiter.Allow(ctx, "unknown"))
}

func TestAllow_ConcurrentSameIdentifier(t *testing.T) {
	t.Parallel()

	limiter, _ := newLimiter(newFakeClock())
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(ctx, "same") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, allowed.Load())
}

func TestSweep(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	limiter, store := newLimiter(clock)
	ctx := context.Background()

	limiter.Allow(ctx, "old")
	clock.Advance(30 * time.Minute)
	limiter.Allow(ctx, "new")

	assert.Equal(t, 0, store.Sweep())
	assert.Equal(t, 2, store.Len())

	clock.Advance(31 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	// Sweeping never changes outcomes: "new" still has 4 calls left.
	for i := 0; i < 4; i++ {
		assert.True(t, limiter.Allow(ctx, "new"))
	}
	assert.False(t, limiter.Allow(ctx, "new"))
}

func TestStartJanitor(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := ratelimit.NewMemoryStore(ratelimit.WithClock(clock.Now))
	_, err := store.Hit(context.Background(), "k", 5, time.Millisecond)
	require.NoError(t, err)
	clock.Advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New(ratelimit.NewMemoryStore(), 0, 0, nil)
	assert.Equal(t, ratelimit.DefaultMaxRequests, limiter.MaxRequests())
	assert.Equal(t, ratelimit.DefaultWindow, limiter.Window())
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestAllow_StoreErrorAdmits(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New(failingStore{}, 5, time.Hour, nil)
	assert.True(t, limiter.Allow(context.Background(), "1.2.3.4"))
}

func TestRedisStore_UnreachableAdmits(t *testing.T) {
	t.Parallel()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	store := ratelimit.NewRedisStore(rdb)
	_, err := store.Hit(context.Background(), "k", 5, time.Hour)
	require.Error(t, err)

	limiter := ratelimit.New(store, 5, time.Hour, nil)
	assert.True(t, limiter.Allow(context.Background(), "k"))
}
