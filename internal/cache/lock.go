package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = `
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`

// TryLock acquires a named lock for ttl. It returns a release function when
// the lock was acquired and ok=false when another holder owns it.
func (c *Cache) TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	key := c.key("lock", name)
	token := uuid.NewString()

	acquired, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release = func(ctx context.Context) error {
		return c.client.Eval(ctx, releaseScript, []string{key}, token).Err()
	}
	return release, true, nil
}
