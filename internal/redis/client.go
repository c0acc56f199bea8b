package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// sequenceTTL outlives the date prefix embedded in every sequence key.
const sequenceTTL = 48 * time.Hour

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Next atomically reserves the next value of a named sequence.
func (c *Client) Next(ctx context.Context, key string) (int64, error) {
	fullKey := "seq:" + key
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to reserve sequence %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
