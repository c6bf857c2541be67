package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jreis/shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository and
// shortener.ClickStore. Create is compare-and-insert under the lock, so
// it enforces the same uniqueness guarantee as the Postgres primary key.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[string]shortener.ShortLink
	clicks map[string][]shortener.ClickEvent
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:  make(map[string]shortener.ShortLink),
		clicks: make(map[string][]shortener.ClickEvent),
	}
}

func (m *MemoryStore) Create(_ context.Context, link *shortener.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrCodeInUse
	}

	m.links[link.Code] = *link

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code string) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) Exists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[code]

	return ok, nil
}

func (m *MemoryStore) Record(_ context.Context, click *shortener.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clicks[click.Code] = append(m.clicks[click.Code], *click)

	return nil
}

func (m *MemoryStore) ListByCode(_ context.Context, code string) ([]shortener.ClickEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clicks := make([]shortener.ClickEvent, len(m.clicks[code]))
	copy(clicks, m.clicks[code])

	// Listing is ordered by event timestamp, not insertion order.
	sort.Slice(clicks, func(i, j int) bool {
		return clicks[i].Timestamp.Before(clicks[j].Timestamp)
	})

	return clicks, nil
}
