// Package cacheutils builds response caches from configuration.
package cacheutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/shelf/pkg/cache"
	"github.com/papercomputeco/shelf/pkg/cache/inmemory"
	"github.com/papercomputeco/shelf/pkg/cache/redis"
)

type NewCacheOpts struct {
	ProviderType string
	URL          string
	Logger       *slog.Logger
}

// NewCache returns nil with no error when caching is disabled.
func NewCache(ctx context.Context, o *NewCacheOpts) (cache.Cache, error) {
	switch o.ProviderType {
	case "", "none":
		return nil, nil
	case "inmemory":
		return inmemory.NewCache(), nil
	case "redis":
		c, err := redis.NewCache(ctx, redis.Config{URL: o.URL}, o.Logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", o.ProviderType)
	}
}
