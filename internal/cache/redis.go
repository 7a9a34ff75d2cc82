// Package cache provides a tiny Redis client wrapper for prediction caching
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SyedDaiam9101/cover-service/internal/prediction"
)

// KeyPrefix namespaces prediction entries
const KeyPrefix = "prediction:"

// DefaultTTL is used when New is given a non-positive ttl
const DefaultTTL = 24 * time.Hour

// ErrNilClient is returned when the cache was not connected
var ErrNilClient = errors.New("cache client is nil")

// Cache wraps a Redis client for prediction storage
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Cache instance connected to the specified Redis address
// If addr is empty, defaults to localhost:6379
func New(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Key derives the cache key for raw image bytes
func Key(data []byte) string {
	sum := md5.Sum(data)
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached prediction, or nil when the key does not exist
func (c *Cache) Get(ctx context.Context, key string) (*prediction.Prediction, error) {
	if c == nil || c.client == nil {
		return nil, ErrNilClient
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	var pred prediction.Prediction
	if err := json.Unmarshal(data, &pred); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &pred, nil
}

// Set stores a prediction under key with the configured TTL
func (c *Cache) Set(ctx context.Context, key string, pred *prediction.Prediction) error {
	if c == nil || c.client == nil {
		return ErrNilClient
	}

	data, err := json.Marshal(pred)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrNilClient
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}
