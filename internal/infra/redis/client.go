package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for shared rate-limit cooldowns.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// Config holds Redis connection configuration.
type Config struct {
	URL       string `yaml:"url"`
	Password  string `yaml:"password"`
	KeyPrefix string `yaml:"key_prefix"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "authkit"
	}
	return &Client{rdb: rdb, prefix: prefix}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) cooldownKey(key string) string {
	return fmt.Sprintf("%s:cooldown:%s", c.prefix, key)
}

// blockScript extends a cooldown in one round trip: the key is only rewritten
// when its remaining TTL is shorter than the requested one.
var blockScript = redis.NewScript(`
local current = redis.call('PTTL', KEYS[1])
local ttl = tonumber(ARGV[2])
if current >= ttl then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
return 1
`)

// Block sets a cooldown for key that expires at until. An existing longer
// cooldown is kept, also against concurrent writers.
func (c *Client) Block(ctx context.Context, key string, until time.Time) error {
	ttl := time.Until(until).Milliseconds()
	if ttl <= 0 {
		return nil
	}

	err := blockScript.Run(ctx, c.rdb, []string{c.cooldownKey(key)}, until.UnixMilli(), ttl).Err()
	if err != nil {
		return fmt.Errorf("set cooldown failed: %w", err)
	}
	return nil
}

// Remaining returns the time left on key's cooldown.
func (c *Client) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.rdb.PTTL(ctx, c.cooldownKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pttl failed: %w", err)
	}
	// PTTL reports -2 for a missing key and -1 for a key without expiry.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
