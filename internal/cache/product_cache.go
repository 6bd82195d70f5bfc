package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scandoo/scandoo/internal/models"
)

// ProductCache is a read-through cache for product lookups by code.
// Only positive results are cached; a NotFound always goes back to the
// store so a freshly created product is visible immediately.
type ProductCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewProductCache creates a new ProductCache with the given entry TTL.
func NewProductCache(redis *RedisClient, ttl time.Duration) *ProductCache {
	return &ProductCache{redis: redis, ttl: ttl}
}

// key returns the Redis key for a product code.
func (c *ProductCache) key(code string) string {
	return fmt.Sprintf("product:code:%s", code)
}

// Get returns the cached product for code, or (nil, nil) on a miss.
func (c *ProductCache) Get(ctx context.Context, code string) (*models.Product, error) {
	jsonData, err := c.redis.Get(ctx, c.key(code))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p models.Product
	if err := json.Unmarshal([]byte(jsonData), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &p, nil
}

// Set stores a product under its code.
func (c *ProductCache) Set(ctx context.Context, p *models.Product) error {
	jsonData, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.redis.Set(ctx, c.key(p.Code), string(jsonData), c.ttl)
}

// Invalidate removes the cache entries for the given codes. Updates that
// change a record's code must invalidate both the old and the new code.
func (c *ProductCache) Invalidate(ctx context.Context, codes ...string) error {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, c.key(code))
	}
	return c.redis.Delete(ctx, keys...)
}
