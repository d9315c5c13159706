package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrunetcore/farmhub/config"
)

const redisKeyPrefix = "session:"

// RedisBackend stores session records in Redis with a TTL matching the
// inactivity limit, so abandoned sessions are reclaimed without a sweeper.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(cfg config.RedisConfig) *RedisBackend {
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (r *RedisBackend) Save(ctx context.Context, token string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, redisKeyPrefix+token, data, ttl).Err()
}

func (r *RedisBackend) Load(ctx context.Context, token string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (r *RedisBackend) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, redisKeyPrefix+token).Err()
}

// Close releases the underlying Redis connection pool.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
