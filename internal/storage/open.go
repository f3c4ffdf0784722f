package storage

import (
	"context"
	"fmt"
	"time"

	"nextgen-storefront/internal/config"
	"nextgen-storefront/internal/db"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront:"

// Open builds the Store selected by cfg.StorageDriver. The returned close
// func releases the underlying connection and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("redis ping failed: %w", err)
		}
		return NewRedisStore(client, redisKeyPrefix), client.Close, nil

	case config.StoragePostgres:
		database, err := db.NewDatabase(cfg)
		if err != nil {
			return nil, noop, err
		}
		return NewPostgresStore(database), database.Close, nil

	case config.StorageMemory, "":
		return NewMemoryStore(), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
