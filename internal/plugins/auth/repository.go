package auth

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/plusvans/admin/internal/backend"
)

// profileKeyPrefix is the Redis key prefix for cached profiles.
const profileKeyPrefix = "profile:"

// SessionKey derives a stable server-side key from a bearer token so the raw
// token never appears in Redis key names or logs.
func SessionKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ProfileCache stores backend profiles by session key so the gate does not
// call the backend on every navigation.
type ProfileCache interface {
	// Get returns the cached profile, or nil without error on a miss.
	Get(ctx context.Context, key string) (*backend.Profile, error)
	Put(ctx context.Context, key string, p *backend.Profile) error
	Evict(ctx context.Context, key string) error
}

// redisProfileCache implements ProfileCache on Redis.
type redisProfileCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewProfileCache creates a Redis-backed profile cache.
func NewProfileCache(rdb *redis.Client, ttl time.Duration) ProfileCache {
	return &redisProfileCache{redis: rdb, ttl: ttl}
}

func (r *redisProfileCache) Get(ctx context.Context, key string) (*backend.Profile, error) {
	data, err := r.redis.Get(ctx, profileKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile from Redis: %w", err)
	}

	var p backend.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling cached profile: %w", err)
	}
	return &p, nil
}

func (r *redisProfileCache) Put(ctx context.Context, key string, p *backend.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	if err := r.redis.Set(ctx, profileKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("storing profile in Redis: %w", err)
	}
	return nil
}

func (r *redisProfileCache) Evict(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, profileKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting profile from Redis: %w", err)
	}
	return nil
}
