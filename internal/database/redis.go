package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/plusvans/admin/internal/config"
)

// NewRedis connects the client behind the profile cache, list view state and
// rate limits. It waits for the server the same way NewMariaDB does.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := waitReady("redis", ping); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
