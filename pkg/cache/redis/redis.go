// Package redis provides a chat response cache on Redis.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/papercomputeco/shelf/pkg/cache"
)

// DefaultPrefix namespaces every key written by the cache.
const DefaultPrefix = "shelf:chat:"

// Config holds configuration for the Redis cache.
type Config struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string

	// Prefix defaults to DefaultPrefix if empty.
	Prefix string
}

// Cache stores values under sha256-hashed keys.
type Cache struct {
	client *goredis.Client
	prefix string
	logger *slog.Logger
}

// NewCache connects to Redis and verifies the connection with PING.
func NewCache(ctx context.Context, c Config, logger *slog.Logger) (*Cache, error) {
	if c.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	opt, err := goredis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	logger = logger.With("component", "redis_cache")
	logger.Info("connected to Redis", "addr", opt.Addr, "prefix", prefix)

	return &Cache{
		client: client,
		prefix: prefix,
		logger: logger,
	}, nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, Key(c.prefix, key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting cache entry: %w", err)
	}

	c.logger.Debug("cache hit")
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	if err := c.client.Set(ctx, Key(c.prefix, key), val, ttl).Err(); err != nil {
		return fmt.Errorf("setting cache entry: %w", err)
	}
	return nil
}

// Clear deletes every key under the prefix using SCAN so large keyspaces
// never block the server.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting cache keys: %w", err)
	}

	c.logger.Debug("cache cleared", "keys_deleted", len(keys))
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Key hashes key under prefix.
func Key(prefix, key string) string {
	sum := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(sum[:])
}

var _ cache.Cache = (*Cache)(nil)
