package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// ResultCache stores serialized analysis outputs keyed by mart name.
// Callers treat every cache error as a miss and recompute.
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Close() error
}

// RedisResultCache implements ResultCache using Redis
// This is suitable for deployments where several analysis consumers
// share cached mart results
type RedisResultCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisResultCache creates a new Redis-based result cache
func NewRedisResultCache(cfg RedisConfig) (*RedisResultCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisResultCache{
		client:    client,
		keyPrefix: "analytics:result:",
	}, nil
}

// NewRedisResultCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisResultCacheWithClient(client *redis.Client, keyPrefix string) *RedisResultCache {
	if keyPrefix == "" {
		keyPrefix = "analytics:result:"
	}
	return &RedisResultCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get loads and unmarshals the cached value for key into dest.
// Returns ErrCacheMiss when the key is absent or expired.
func (c *RedisResultCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get cached result: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	return nil
}

// Set marshals value and stores it under key with a TTL.
func (c *RedisResultCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Invalidate removes the cached value for key.
func (c *RedisResultCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached result: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisResultCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisResultCache implements ResultCache
var _ ResultCache = (*RedisResultCache)(nil)
