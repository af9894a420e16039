package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTextCacheTTL = 5 * time.Minute
	textCacheKey        = "catalog:display_texts"
)

// TextCache caches the distractor text pool in Redis so quiz generation does
// not re-read the full catalog on every start.
type TextCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ DisplayTextCache = (*TextCache)(nil)

// NewTextCache builds a Redis-backed display text cache.
func NewTextCache(client *redis.Client, ttl time.Duration) *TextCache {
	if ttl <= 0 {
		ttl = defaultTextCacheTTL
	}
	return &TextCache{client: client, ttl: ttl}
}

// Get returns the cached text pool, or nil on a miss.
func (c *TextCache) Get(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, textCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

// Set stores the text pool with the configured TTL.
func (c *TextCache) Set(ctx context.Context, texts []string) error {
	data, err := json.Marshal(texts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, textCacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached pool (catalog import jobs call this).
func (c *TextCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, textCacheKey).Err()
}
