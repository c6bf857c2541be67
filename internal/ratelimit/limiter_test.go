package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jreis/shortener/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore counts per key in memory, ignoring windows.
type mockStore struct {
	counts map[string]int64
	err    error
}

func newMockStore() *mockStore {
	return &mockStore{counts: make(map[string]int64)}
}

func (m *mockStore) Record(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}

	m.counts[key]++

	return m.counts[key], nil
}

func TestLimiter_Allow(t *testing.T) {
	limits := []ratelimit.LimitConfig{{Window: time.Minute, Max: 2}}

	t.Run("allows requests under the limit", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(newMockStore())

		for i := 0; i < 2; i++ {
			allowed, exceeded, err := limiter.Allow(context.Background(), "client", "/route", limits)

			require.NoError(t, err)
			assert.True(t, allowed, "request %d should be allowed", i+1)
			assert.Nil(t, exceeded)
		}
	})

	t.Run("denies requests over the limit", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(newMockStore())

		for i := 0; i < 2; i++ {
			_, _, err := limiter.Allow(context.Background(), "client", "/route", limits)
			require.NoError(t, err)
		}

		allowed, exceeded, err := limiter.Allow(context.Background(), "client", "/route", limits)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, int64(3), exceeded.Count)
		assert.Equal(t, int64(2), exceeded.Config.Max)
	})

	t.Run("reports the first limit that is exceeded", func(t *testing.T) {
		tight := []ratelimit.LimitConfig{
			{Window: time.Minute, Max: 1},
			{Window: time.Hour, Max: 100},
		}
		limiter := ratelimit.NewLimiter(newMockStore())

		_, _, err := limiter.Allow(context.Background(), "client", "/route", tight)
		require.NoError(t, err)

		allowed, exceeded, err := limiter.Allow(context.Background(), "client", "/route", tight)

		require.NoError(t, err)
		assert.False(t, allowed)
		require.NotNil(t, exceeded)
		assert.Equal(t, time.Minute, exceeded.Config.Window)
	})

	t.Run("tracks routes independently", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(newMockStore())

		for i := 0; i < 2; i++ {
			_, _, err := limiter.Allow(context.Background(), "client", "/a", limits)
			require.NoError(t, err)
		}

		allowed, _, err := limiter.Allow(context.Background(), "client", "/b", limits)

		require.NoError(t, err)
		assert.True(t, allowed, "a different route should have its own counter")
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(newMockStore())

		for i := 0; i < 2; i++ {
			_, _, err := limiter.Allow(context.Background(), "client1", "/route", limits)
			require.NoError(t, err)
		}

		allowed, _, err := limiter.Allow(context.Background(), "client2", "/route", limits)

		require.NoError(t, err)
		assert.True(t, allowed, "a different client should have its own counter")
	})

	t.Run("no limits always allows", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(newMockStore())

		allowed, exceeded, err := limiter.Allow(context.Background(), "client", "/route", nil)

		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Nil(t, exceeded)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := newMockStore()
		store.err = errors.New("store error")
		limiter := ratelimit.NewLimiter(store)

		allowed, _, err := limiter.Allow(context.Background(), "client", "/route", limits)

		assert.Error(t, err)
		assert.False(t, allowed)
	})
}
