// Package cache holds finished answers keyed by language code and
// normalized query text. A miss is never fatal: the pipeline recomputes.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/resilience-labs/climatechat/schema"
)

// Store is the response cache backend.
type Store interface {
	// Get returns the cached entry for key, or ok=false on miss.
	Get(ctx context.Context, key string) (*schema.CacheEntry, bool)
	// Set stores entry under key for ttl. Failures are swallowed.
	Set(ctx context.Context, key string, entry *schema.CacheEntry, ttl time.Duration)
	Close() error
}

// Key builds the cache key for a query in a given language. History is
// deliberately not part of the key: a cached answer must be reusable
// across conversations.
func Key(languageCode, query string) string {
	return languageCode + ":" + strings.ToLower(strings.TrimSpace(query))
}

// Nop is a Store that caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) (*schema.CacheEntry, bool)         { return nil, false }
func (Nop) Set(context.Context, string, *schema.CacheEntry, time.Duration) {}
func (Nop) Close() error                                                   { return nil }
