// Package cache provides a byte-oriented cache used to memoize rendered
// diagram exports.
//
// Rendering is deterministic: the same diagram content in the same format
// always yields the same bytes. Keys are therefore content-addressed via
// [RenderKey], and entries never need invalidation beyond their TTL.
//
// Two implementations are provided:
//   - FileCache: persistent, for CLI usage across invocations
//   - NullCache: disabled caching, for tests and one-shot renders
package cache

import (
	"context"
	"time"
)

// Cache stores and retrieves byte blobs by key.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 means no expiration).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// RenderKey builds the cache key for a rendered export: the format name
// prefixed onto a hash of the diagram's serialized content.
func RenderKey(format string, content []byte) string {
	return "render:" + format + ":" + Hash(content)
}
