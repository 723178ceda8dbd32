package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"releaf-service/internal/models"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/rate_limit.lua
var rateLimitScript string

const (
	catalogKey = "rewards:catalog"
	catalogTTL = 5 * time.Minute
)

type Client struct {
	rdb       *redis.Client
	rateLimit *redis.Script
}

// NewClient creates a new Redis client with the rate-limit script loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:       rdb,
		rateLimit: redis.NewScript(rateLimitScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCatalog returns the cached active-reward listing. A miss is
// (nil, false, nil).
func (c *Client) GetCatalog(ctx context.Context) ([]models.Reward, bool, error) {
	raw, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog cache get failed: %w", err)
	}

	var rewards []models.Reward
	if err := json.Unmarshal(raw, &rewards); err != nil {
		return nil, false, fmt.Errorf("catalog cache decode failed: %w", err)
	}
	return rewards, true, nil
}

// SetCatalog caches the active-reward listing with a short TTL
func (c *Client) SetCatalog(ctx context.Context, rewards []models.Reward) error {
	raw, err := json.Marshal(rewards)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, catalogKey, raw, catalogTTL).Err()
}

// InvalidateCatalog drops the cached listing after a stock change
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}

// AllowRequest atomically counts a hit against the caller's window and
// reports whether the request is under the limit.
func (c *Client) AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	result, err := c.rateLimit.Run(ctx, c.rdb,
		[]string{fmt.Sprintf("ratelimit:%s", key)},
		window.Milliseconds(), limit).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	return allowed == 1, nil
}
