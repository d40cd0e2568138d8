// Package cache holds the Redis-backed state shared by API instances: rate
// limit buckets, the health tips payload and the reminder sweep lock.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes every key written by the API.
const DefaultNamespace = "lifeguard"

// Cache is a namespaced Redis keyspace.
type Cache struct {
	client    *redis.Client
	namespace string
}

// Option adjusts the Redis client or keyspace before connecting.
type Option func(*redis.Options, *Cache)

// WithNamespace replaces DefaultNamespace. An empty namespace writes bare keys.
func WithNamespace(ns string) Option {
	return func(_ *redis.Options, c *Cache) { c.namespace = ns }
}

// WithPoolSize overrides the connection pool size.
func WithPoolSize(n int) Option {
	return func(o *redis.Options, _ *Cache) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

// New parses redisURL, connects and pings.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	o, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	// Requests hit Redis at most twice: one bucket take and, on health tips
	// routes, one payload read.
	o.PoolSize = 10
	o.MinIdleConns = 2
	o.PoolTimeout = 2 * time.Second
	o.ReadTimeout = time.Second
	o.ConnMaxIdleTime = 5 * time.Minute

	c := &Cache{namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(o, c)
	}
	c.client = redis.NewClient(o)

	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return c, nil
}

// key joins parts under the namespace, e.g. "lifeguard:rl:user:u1".
func (c *Cache) key(parts ...string) string {
	if c.namespace == "" {
		return strings.Join(parts, ":")
	}
	return c.namespace + ":" + strings.Join(parts, ":")
}

// Ping reports whether Redis answers. Used by /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client for test cleanup.
func (c *Cache) Client() *redis.Client {
	return c.client
}
