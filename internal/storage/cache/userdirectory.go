package cache

import (
	"context"
	"time"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get returns an error when the key is absent.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores the value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedUserDirectory is a decorator that adds read-aside caching to any
// UserDirectory. This service never writes users, so entries expire by TTL
// instead of being invalidated; the TTL bounds how long a revoked device
// token keeps receiving pushes.
type CachedUserDirectory struct {
	realDirectory push.UserDirectory
	cache         CacheClient
	ttl           time.Duration
}

// NewCachedUserDirectory creates the decorator.
func NewCachedUserDirectory(realDirectory push.UserDirectory, cache CacheClient, ttl time.Duration) *CachedUserDirectory {
	return &CachedUserDirectory{
		realDirectory: realDirectory,
		cache:         cache,
		ttl:           ttl,
	}
}

func (d *CachedUserDirectory) GetUser(ctx context.Context, id string) (*push.User, error) {
	key := d.cacheKey(id)

	var cached push.User
	if err := d.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	fresh, err := d.realDirectory.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		// Misses are not cached; absent users are rare on this path.
		return nil, nil
	}

	// Caching is an optimization, not a transaction. If Redis is down we
	// just serve from the database.
	_ = d.cache.Set(ctx, key, fresh, d.ttl)

	return fresh, nil
}

func (d *CachedUserDirectory) cacheKey(id string) string {
	return "push:user:" + id
}
