package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/reelscore-server/internal/model"
)

// Internal adapter interface to enable testing without a real Redis server.
type redisAPI interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) (int64, error)
}

// Wrapper to adapt *redis.Client to redisAPI.
type redisClientWrapper struct{ c *redis.Client }

func (w redisClientWrapper) Ping(ctx context.Context) error {
	return w.c.Ping(ctx).Err()
}
func (w redisClientWrapper) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return w.c.Set(ctx, key, value, ttl).Err()
}
func (w redisClientWrapper) Get(ctx context.Context, key string) (string, error) {
	return w.c.Get(ctx, key).Result()
}
func (w redisClientWrapper) Del(ctx context.Context, key string) (int64, error) {
	return w.c.Del(ctx, key).Result()
}

var _ model.EphemeralCache = (*Client)(nil)

// Client is an EphemeralCache backed by Redis key expiry.
type Client struct {
	api    redisAPI
	prefix string
}

// NewClient creates a cache over a real *redis.Client. Every key is stored
// under prefix.
func NewClient(ctx context.Context, client *redis.Client, prefix string) (*Client, error) {
	return NewClientWithAPI(ctx, redisClientWrapper{c: client}, prefix)
}

// NewClientWithAPI allows injecting a fake API (used in tests).
func NewClientWithAPI(ctx context.Context, api redisAPI, prefix string) (*Client, error) {
	if err := api.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return &Client{
		api:    api,
		prefix: prefix,
	}, nil
}

// Set stores value under key for ttl. A non-positive ttl is rejected since
// nothing in the cache may live forever.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("failed to set key %q: ttl must be positive", key)
	}
	if err := c.api.Set(ctx, c.prefix+key, value, ttl); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.api.Get(ctx, c.prefix+key)
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return val, nil
}

// Delete removes key and reports whether it was present. Redis DEL is atomic,
// so of two concurrent deletes of the same key exactly one sees true.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.api.Del(ctx, c.prefix+key)
	if err != nil {
		return false, fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return n > 0, nil
}
