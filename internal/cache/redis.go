package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homimatch/server/internal/clock"
	"github.com/homimatch/server/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes the Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// KeyForSwipeCount builds the counter key for a (user, day) pair.
func (c *RedisCache) KeyForSwipeCount(userID, day string) string {
	return fmt.Sprintf("swipes:count:%s:%s", userID, day)
}

// IncrSwipeCount atomically increments the user's counter for the day
// containing now and returns the new value. The key expires at the next
// UTC midnight, so day rollover needs no reset job: an absent key is zero.
func (c *RedisCache) IncrSwipeCount(ctx context.Context, userID string, now time.Time) (int64, error) {
	key := c.KeyForSwipeCount(userID, clock.DayKey(now))
	ttl := clock.NextMidnight(now).Sub(now)

	pipe := c.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetSwipeCount returns the user's counter for the given day key.
// A missing key reads as zero.
func (c *RedisCache) GetSwipeCount(ctx context.Context, userID, day string) (int64, error) {
	val, err := c.Client.Get(ctx, c.KeyForSwipeCount(userID, day)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}
