package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trainsys/client/internal/logging"
)

const redisOpTimeout = 3 * time.Second

// Redis хранит значения в Redis; удобно для общих профилей на нескольких машинах.
type Redis struct {
	client *redis.Client
	prefix string
	logger *logging.Logger
}

// OpenRedis подключается к Redis по URL вида redis://host:port/db.
func OpenRedis(rawURL, prefix string, logger *logging.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	logger.Debugf("session storage opened: redis %s", opt.Addr)
	return NewRedis(redis.NewClient(opt), prefix, logger), nil
}

// NewRedis оборачивает готовый клиент.
func NewRedis(client *redis.Client, prefix string, logger *logging.Logger) *Redis {
	return &Redis{client: client, prefix: prefix, logger: logger}
}

func (r *Redis) Load(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis load %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Save(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis remove %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
