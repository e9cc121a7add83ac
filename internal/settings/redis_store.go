package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "proofread:settings:"

// RedisStore keeps one profile's settings as a JSON value.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{client: client, key: redisKeyPrefix + profile}
}

func (s *RedisStore) Load(ctx context.Context) (Settings, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}

	out := Default()
	if err := json.Unmarshal(raw, &out); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return out.Normalize(), nil
}

func (s *RedisStore) Save(ctx context.Context, settings Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
