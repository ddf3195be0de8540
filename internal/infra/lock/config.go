package lock

import (
	"context"

	"wholesale/internal/config"

	"github.com/redis/go-redis/v9"
)

type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// FromConfigはREDIS_ADDRがあればRedis、なければプロセス内のロックを返す
func FromConfig(ctx context.Context, cfg config.Config) (Locker, func() error, error) {
	if cfg.RedisAddr == "" {
		return NewLocalLocker(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return NewRedisLocker(client), client.Close, nil
}
