// Package cache provides the Redis access layer: login sessions and rate limits.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes every key when Options.Namespace is empty.
const DefaultNamespace = "pubdocs"

// Options configures the Redis connection backing login sessions and the
// login rate limiter.
type Options struct {
	URL string
	// Namespace is prepended to every key, so several deployments (or test
	// runs) can share one Redis database without seeing each other's sessions.
	Namespace string
	// PoolSize caps open connections. Zero keeps the go-redis default.
	PoolSize int
}

// Cache stores login sessions and login attempt buckets in Redis.
type Cache struct {
	client    *redis.Client
	namespace string
}

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*Cache, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	// Session lookups run on every authenticated request.
	redisOpts.MinIdleConns = 2
	redisOpts.PoolTimeout = 4 * time.Second
	redisOpts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client, namespace: namespaceOrDefault(opts.Namespace)}, nil
}

func namespaceOrDefault(ns string) string {
	ns = strings.Trim(ns, ": ")
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

// key joins the namespace, a key prefix and an id.
func (c *Cache) key(prefix, id string) string {
	return c.namespace + ":" + prefix + id
}

// Ping checks Redis connectivity for the readiness endpoint.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client. Only test helpers use it.
func (c *Cache) Client() *redis.Client {
	return c.client
}
