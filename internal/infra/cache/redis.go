package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"svitlo-monitor/internal/domain"
)

const statusKey = "monitor:status"

// RedisCache — прості TTL-операції поверх Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedis створює кеш.
func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Once виконує функцію, якщо ключ ще не зайнятий. Використовується як
// сторож від перекриття циклів між кількома збирачами.
func (c *RedisCache) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error {
	ok, err := c.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	defer func() { _ = c.client.Del(ctx, key).Err() }()
	return fn()
}

// Set задає значення.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Get повертає значення.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

// StatusCache публікує стан циклу в Redis, щоб його бачив процес API.
type StatusCache struct {
	cache *RedisCache
}

var _ domain.StatusStore = (*StatusCache)(nil)

// NewStatusCache створює сховище стану.
func NewStatusCache(cache *RedisCache) *StatusCache {
	return &StatusCache{cache: cache}
}

// SetStatus зберігає стан циклу.
func (s *StatusCache) SetStatus(status domain.CycleStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.cache.Set(ctx, statusKey, payload, 0)
}

// GetStatus читає стан циклу. Відсутній ключ читається як порожній стан.
func (s *StatusCache) GetStatus() (domain.CycleStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	payload, err := s.cache.Get(ctx, statusKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CycleStatus{}, nil
		}
		return domain.CycleStatus{}, err
	}
	var status domain.CycleStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return domain.CycleStatus{}, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}
