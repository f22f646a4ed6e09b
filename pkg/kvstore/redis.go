package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/alumni-hub-api/pkg/config"
)

// DialRedis returns a configured Redis client after a successful ping.
func DialRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// RedisStore keeps values as plain Redis strings without expiry.
type RedisStore struct {
	client *redis.Client
	limit  int64
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, limit int64) *RedisStore {
	return &RedisStore{client: client, limit: limit}
}

// Client exposes the underlying connection so other components can share it.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Get fetches key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value; Redis maxmemory rejections surface as ErrQuotaExceeded.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if exceeds(s.limit, len(value)) {
		return ErrQuotaExceeded
	}
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		if strings.HasPrefix(err.Error(), "OOM") {
			return ErrQuotaExceeded
		}
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
