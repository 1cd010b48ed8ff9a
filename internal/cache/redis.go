package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	nextGameKey = "schedule:next_game"

	// NextGameTTL bounds how stale a cached next-game response can get.
	// The schedule changes at most a few times a day.
	NextGameTTL = 5 * time.Minute
)

// RedisCache caches scraped schedule responses
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// SetNextGame caches the serialized next-game response
func (rc *RedisCache) SetNextGame(ctx context.Context, payload []byte) error {
	return rc.client.Set(ctx, nextGameKey, payload, NextGameTTL).Err()
}

// GetNextGame returns the cached next-game payload. The second return
// value is false on a cache miss.
func (rc *RedisCache) GetNextGame(ctx context.Context) ([]byte, bool, error) {
	val, err := rc.client.Get(ctx, nextGameKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// InvalidateNextGame drops the cached next-game payload
func (rc *RedisCache) InvalidateNextGame(ctx context.Context) error {
	return rc.client.Del(ctx, nextGameKey).Err()
}
