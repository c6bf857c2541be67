package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store defines the interface for rate limit counters.
type Store interface {
	// Record records a request under key and returns the number of
	// requests seen in the current window, pruning expired entries.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// LimitConfig is one window/max pair.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Exceeded describes which limit was hit.
type Exceeded struct {
	Config LimitConfig
	Count  int64
}

// Limiter checks a set of per-route limits against a Store. Each client,
// route, and window combination is tracked independently.
type Limiter struct {
	store Store
}

// NewLimiter creates a new limiter backed by the given store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow records the request and reports whether it stays within every
// limit. The Exceeded return value is nil when allowed.
func (l *Limiter) Allow(
	ctx context.Context, clientKey, route string, limits []LimitConfig,
) (bool, *Exceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:%s:%d", clientKey, route, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return false, nil, err
		}

		if count > limit.Max {
			return false, &Exceeded{Config: limit, Count: count}, nil
		}
	}

	return true, nil, nil
}
