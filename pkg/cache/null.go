package cache

import (
	"context"
	"time"
)

// NullCache never stores anything. Every Get is a miss, every Set succeeds.
type NullCache struct{}

// NewNullCache creates a disabled cache.
func NewNullCache() *NullCache { return &NullCache{} }

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (c *NullCache) Delete(ctx context.Context, key string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
