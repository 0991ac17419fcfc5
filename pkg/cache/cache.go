// Package cache defines the response cache used by the chatbot.
package cache

import (
	"context"
	"time"
)

// Cache stores string values by key with a time-to-live.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores val under key for ttl. A ttl of zero never expires.
	Set(ctx context.Context, key, val string, ttl time.Duration) error

	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error

	Close() error
}
