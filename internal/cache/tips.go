package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetHealthTips returns a cached health tips payload.
// The bool is false on a cache miss.
func (c *Cache) GetHealthTips(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key("tips", name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get health tips: %w", err)
	}
	return data, true, nil
}

// SetHealthTips stores a health tips payload for ttl.
func (c *Cache) SetHealthTips(ctx context.Context, name string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key("tips", name), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set health tips: %w", err)
	}
	return nil
}

// DeleteHealthTips drops a cached payload.
func (c *Cache) DeleteHealthTips(ctx context.Context, name string) error {
	return c.client.Del(ctx, c.key("tips", name)).Err()
}
