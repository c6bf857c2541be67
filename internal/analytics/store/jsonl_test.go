package store_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jreis/shortener/internal/analytics"
	"github.com/jreis/shortener/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)

	defer file.Close()

	var lines []map[string]any

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))

		lines = append(lines, entry)
	}

	require.NoError(t, scanner.Err())

	return lines
}

func TestJSONL(t *testing.T) {
	t.Run("creates the file on open", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "access_logs.jsonl")

		s, err := store.NewJSONL(path)

		require.NoError(t, err)
		assert.FileExists(t, path)

		_ = s.Shutdown()
	})

	t.Run("fails when the path is not writable", func(t *testing.T) {
		_, err := store.NewJSONL(filepath.Join(t.TempDir(), "missing", "access_logs.jsonl"))

		assert.Error(t, err)
	})

	t.Run("writes one json object per event", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "access_logs.jsonl")
		s, err := store.NewJSONL(path)
		require.NoError(t, err)

		now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

		err = s.SaveLinkCreated(context.Background(), &analytics.LinkCreatedEvent{
			Code:        "abcd1",
			OriginalURL: "https://example.com",
			CreatedAt:   now,
			ExpiresAt:   now.Add(30 * time.Minute),
		})
		require.NoError(t, err)

		err = s.SaveLinkVisited(context.Background(), &analytics.LinkVisitedEvent{
			Code:      "abcd1",
			VisitedAt: now.Add(time.Minute),
			ClientIP:  "203.0.113.7",
			Location:  "unknown",
		})
		require.NoError(t, err)

		require.NoError(t, s.Shutdown())

		lines := readLines(t, path)
		require.Len(t, lines, 2)
		assert.Equal(t, analytics.TopicLinkCreated, lines[0]["event"])
		assert.Equal(t, "abcd1", lines[0]["code"])
		assert.Equal(t, analytics.TopicLinkVisited, lines[1]["event"])
		assert.Equal(t, "203.0.113.7", lines[1]["clientIp"])
	})

	t.Run("append mode preserves earlier runs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "access_logs.jsonl")

		first, err := store.NewJSONL(path)
		require.NoError(t, err)
		require.NoError(t, first.SaveLinkCreated(context.Background(), &analytics.LinkCreatedEvent{Code: "one111"}))
		require.NoError(t, first.Shutdown())

		second, err := store.NewJSONL(path)
		require.NoError(t, err)
		require.NoError(t, second.SaveLinkCreated(context.Background(), &analytics.LinkCreatedEvent{Code: "two222"}))
		require.NoError(t, second.Shutdown())

		lines := readLines(t, path)
		require.Len(t, lines, 2)
		assert.Equal(t, "one111", lines[0]["code"])
		assert.Equal(t, "two222", lines[1]["code"])
	})
}
