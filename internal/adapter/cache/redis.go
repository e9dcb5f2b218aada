// internal/adapter/cache/redis.go

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores rendered views in redis. Keys expire after the TTL and a
// sorted set of insertion times keeps the entry count bounded.
type Redis struct {
	rc         *redis.Client
	prefix     string
	ttl        time.Duration
	maxEntries int
}

// OpenRedis opens a redis client
func OpenRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// NewRedis creates a redis-backed cache under prefix
func NewRedis(rc *redis.Client, prefix string, maxEntries int, ttl time.Duration) *Redis {
	return &Redis{
		rc:         rc,
		prefix:     prefix,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *Redis) key(k string) string { return c.prefix + ":view:" + k }

func (c *Redis) index() string { return c.prefix + ":views" }

// Get returns a cached value
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rc.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading cache: %w", err)
	}
	return b, true, nil
}

// Set stores value and trims the oldest entries beyond the limit
func (c *Redis) Set(ctx context.Context, key string, value []byte) error {
	k := c.key(key)
	now := time.Now()

	_, err := c.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, k, value, c.ttl)
		p.ZAdd(ctx, c.index(), redis.Z{Score: float64(now.UnixNano()), Member: k})
		// index entries older than the TTL point at expired keys
		p.ZRemRangeByScore(ctx, c.index(), "-inf", strconv.FormatInt(now.Add(-c.ttl).UnixNano(), 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}

	return c.trim(ctx)
}

func (c *Redis) trim(ctx context.Context) error {
	n, err := c.rc.ZCard(ctx, c.index()).Result()
	if err != nil {
		return fmt.Errorf("error counting cache entries: %w", err)
	}
	excess := n - int64(c.maxEntries)
	if excess <= 0 {
		return nil
	}

	oldest, err := c.rc.ZRange(ctx, c.index(), 0, excess-1).Result()
	if err != nil {
		return fmt.Errorf("error listing cache entries: %w", err)
	}
	if len(oldest) == 0 {
		return nil
	}

	members := make([]interface{}, len(oldest))
	for i, k := range oldest {
		members[i] = k
	}
	_, err = c.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, oldest...)
		p.ZRem(ctx, c.index(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error trimming cache: %w", err)
	}
	return nil
}
