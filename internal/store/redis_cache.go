package store

import (
	"context"
	"strconv"
	"time"

	"github.com/jreis/shortener/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// RedisCacheRepository wraps a shortener.Repository with Redis caching for
// code lookups. Entries expire alongside the link itself, so the cache can
// never serve a mapping past its validity window longer than the link store
// would. Exists always consults the underlying store: allocation correctness
// depends on it being authoritative.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(store shortener.Repository, client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link:",
	}
}

// Create stores the link in the underlying store and write-through caches it.
func (r *RedisCacheRepository) Create(ctx context.Context, link *shortener.ShortLink) error {
	if err := r.store.Create(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

// GetByCode returns the link for a code, checking the cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code string) (*shortener.ShortLink, error) {
	if link, err := r.getFromCache(ctx, code); err == nil {
		return link, nil
	}

	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// Exists reports whether a code is registered, bypassing the cache.
func (r *RedisCacheRepository) Exists(ctx context.Context, code string) (bool, error) {
	return r.store.Exists(ctx, code)
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortener.ShortLink) {
	ttl := time.Until(link.ExpiresAt)
	if ttl <= 0 {
		return
	}

	key := r.prefix + link.Code

	// Cache failures degrade to the underlying store on the next read.
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key,
		"code", link.Code,
		"original_url", link.OriginalURL,
		"created_at", strconv.FormatInt(link.CreatedAt.UnixNano(), 10),
		"expires_at", strconv.FormatInt(link.ExpiresAt.UnixNano(), 10),
	)
	pipe.Expire(ctx, key, ttl)
	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code string) (*shortener.ShortLink, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+code).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	link := &shortener.ShortLink{
		Code:        fields["code"],
		OriginalURL: fields["original_url"],
	}

	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, err
	}

	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, err
	}

	link.CreatedAt = time.Unix(0, createdAt).UTC()
	link.ExpiresAt = time.Unix(0, expiresAt).UTC()

	return link, nil
}
