package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(userID uint) string {
	return fmt.Sprintf("session:%d", userID)
}

func (s *RedisStore) Save(ctx context.Context, userID uint, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID uint) (string, error) {
	val, err := s.client.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("get session: %w", err)
	}
	return val, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
