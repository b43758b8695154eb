package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrNotInitialized = errors.New("Redis client is not initialized")
	ErrLockNotHeld    = errors.New("lock release failed: not the lock owner")
	ErrLockBusy       = errors.New("lock is held by another process")
)

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

var releaseLock = redis.NewScript(releaseLockScript)

type Cache struct {
	client *redis.Client
}

// NewCache wraps an initialized redis client.
func NewCache(client *redis.Client) (*Cache, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return &Cache{client: client}, nil
}

// Ping checks the connection; used by the health endpoint.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) DeleteAll(ctx context.Context, pattern string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	// Use SCAN for better efficiency on large datasets
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get returns "" without error when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", ErrNotInitialized
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetJSON stores value marshalled as JSON.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.Set(ctx, key, data, expiration)
}

// GetJSON loads key into dest. It reports false on a miss or an undecodable entry.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.Get(ctx, key)
	if err != nil || val == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, nil
	}
	return true, nil
}

// SetOnce records key if it is not present yet. It reports whether this call created it.
func (c *Cache) SetOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if c.client == nil {
		return false, ErrNotInitialized
	}
	return c.client.SetNX(ctx, key, "1", ttl).Result()
}

// AcquireLock takes a SetNX lock and returns the owner token needed to release it.
func (c *Cache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if c.client == nil {
		return "", false, ErrNotInitialized
	}
	token := uuid.New().String()
	ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseLock deletes key only if it still holds token.
func (c *Cache) ReleaseLock(ctx context.Context, key, token string) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	result, err := releaseLock.Run(ctx, c.client, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// WithLock runs fn while holding key, retrying acquisition up to retries times.
func (c *Cache) WithLock(ctx context.Context, key string, ttl time.Duration, retries int, retryDelay time.Duration, fn func(context.Context) error) error {
	var (
		token  string
		locked bool
		err    error
	)
	for i := 0; i < retries; i++ {
		token, locked, err = c.AcquireLock(ctx, key, ttl)
		if err == nil && locked {
			break
		}
		if i < retries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !locked {
		return ErrLockBusy
	}
	defer func() {
		_ = c.ReleaseLock(context.WithoutCancel(ctx), key, token)
	}()
	return fn(ctx)
}
