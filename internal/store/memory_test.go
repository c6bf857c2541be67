package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jreis/shortener/internal/shortener"
	"github.com/jreis/shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLink(code string) *shortener.ShortLink {
	now := time.Now().UTC()

	return &shortener.ShortLink{
		Code:        code,
		OriginalURL: "https://example.com",
		CreatedAt:   now,
		ExpiresAt:   now.Add(30 * time.Minute),
	}
}

func TestMemoryStore_Create(t *testing.T) {
	t.Run("creates a link", func(t *testing.T) {
		s := store.NewMemoryStore()

		err := s.Create(context.Background(), newLink("abc123"))

		require.NoError(t, err)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newLink("abc123"))

		err := s.Create(context.Background(), newLink("abc123"))

		assert.ErrorIs(t, err, shortener.ErrCodeInUse)
	})

	t.Run("duplicate create keeps the first mapping", func(t *testing.T) {
		s := store.NewMemoryStore()

		first := newLink("abc123")
		first.OriginalURL = "https://example.com/first"
		_ = s.Create(context.Background(), first)

		second := newLink("abc123")
		second.OriginalURL = "https://example.com/second"
		_ = s.Create(context.Background(), second)

		got, err := s.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/first", got.OriginalURL)
	})
}

func TestMemoryStore_GetByCode(t *testing.T) {
	t.Run("returns the link when found", func(t *testing.T) {
		s := store.NewMemoryStore()
		link := newLink("abc123")
		_ = s.Create(context.Background(), link)

		got, err := s.GetByCode(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.Equal(t, link.ExpiresAt, got.ExpiresAt)
	})

	t.Run("returns ErrNotFound for an unknown code", func(t *testing.T) {
		s := store.NewMemoryStore()

		got, err := s.GetByCode(context.Background(), "missing1")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestMemoryStore_Exists(t *testing.T) {
	s := store.NewMemoryStore()
	_ = s.Create(context.Background(), newLink("abc123"))

	taken, err := s.Exists(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.Exists(context.Background(), "missing1")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestMemoryStore_Clicks(t *testing.T) {
	t.Run("lists clicks ordered by timestamp ascending", func(t *testing.T) {
		s := store.NewMemoryStore()
		base := time.Now().UTC()

		// Insertion order deliberately differs from timestamp order.
		for _, offset := range []time.Duration{time.Minute, 3 * time.Minute, 2 * time.Minute} {
			err := s.Record(context.Background(), &shortener.ClickEvent{
				ID:        uuid.New(),
				Code:      "abc123",
				Timestamp: base.Add(offset),
			})
			require.NoError(t, err)
		}

		clicks, err := s.ListByCode(context.Background(), "abc123")

		require.NoError(t, err)
		require.Len(t, clicks, 3)
		assert.True(t, clicks[0].Timestamp.Before(clicks[1].Timestamp))
		assert.True(t, clicks[1].Timestamp.Before(clicks[2].Timestamp))
	})

	t.Run("returns no clicks for an unknown code", func(t *testing.T) {
		s := store.NewMemoryStore()

		clicks, err := s.ListByCode(context.Background(), "missing1")

		require.NoError(t, err)
		assert.Empty(t, clicks)
	})

	t.Run("keeps click histories separate per code", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Record(context.Background(), &shortener.ClickEvent{Code: "one111", Timestamp: time.Now()})
		_ = s.Record(context.Background(), &shortener.ClickEvent{Code: "two222", Timestamp: time.Now()})

		clicks, err := s.ListByCode(context.Background(), "one111")

		require.NoError(t, err)
		assert.Len(t, clicks, 1)
	})
}
