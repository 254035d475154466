package container

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registry/config"
	"github.com/oksasatya/go-user-registry/internal/domain/repository"
	"github.com/oksasatya/go-user-registry/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-user-registry/internal/infrastructure/postgres"
	redisinfra "github.com/oksasatya/go-user-registry/internal/infrastructure/redis"
	"github.com/oksasatya/go-user-registry/pkg/helpers"
)

// OpenStore builds the user store selected by STORE_DRIVER. The returned
// func releases its connections.
func OpenStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using in-memory store, users are lost on restart")
		return memory.NewUserStore(), func() {}, nil

	case "postgres":
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return nil, nil, errors.Wrap(err, "migrate")
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, nil, err
		}
		return pginfra.NewUserStore(pool), pool.Close, nil

	case "redis", "":
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, errors.Wrap(err, "ping redis")
		}
		return redisinfra.NewUserStore(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil

	default:
		return nil, nil, errors.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
