// Package cache defines the storage the cross-session search cache runs on.
package cache

import (
	"context"
	"time"
)

// Store is implemented by redisstore.Client.
type Store interface {
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, keys []string, member string, ttl time.Duration) error
	SMembers(ctx context.Context, key string) ([]string, error)
}
