package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aniwatch-api/internal/config"
	"aniwatch-api/internal/logging"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Store is the JSON cache the services read through. Misses are (false, nil).
type Store interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis. An empty address returns a Nop store so the API
// runs without a cache.
func NewRedis(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.RedisAddr == "" {
		logging.Info().Msg("[redis] REDIS_ADDR empty, cache disabled")
		return Nop{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logging.Info().Str("addr", cfg.RedisAddr).Msg("[redis] connected")
	return &Redis{client: client}, nil
}

func (r *Redis) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) GetJSON(context.Context, string, any) (bool, error)          { return false, nil }
func (Nop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error                    { return nil }
