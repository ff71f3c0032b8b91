package usercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gtrac-gateway/internal/model"
)

const redisKeyPrefix = "gtrac:user:"

// Redis shares the cache between gateway replicas.
type Redis struct {
	client *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis connects using a redis:// URL and pings once.
func NewRedis(ctx context.Context, rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping: %w", model.ErrCacheUnavailable, err)
	}

	return &Redis{client: client}, nil
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (model.DashboardUser, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.DashboardUser{}, false, nil
	}
	if err != nil {
		return model.DashboardUser{}, false, fmt.Errorf("%w: get: %w", model.ErrCacheUnavailable, err)
	}

	var user model.DashboardUser
	if err := json.Unmarshal(raw, &user); err != nil {
		// A corrupt entry is a miss; the next refresh overwrites it.
		return model.DashboardUser{}, false, nil
	}
	return user, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, user model.DashboardUser, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", model.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: delete: %w", model.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
