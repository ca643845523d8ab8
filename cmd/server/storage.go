package main

import (
	"context"
	"fmt"

	"github.com/ogurasousui/company-sites/internal/adapters/repository/memory"
	"github.com/ogurasousui/company-sites/internal/adapters/repository/postgres"
	"github.com/ogurasousui/company-sites/internal/adapters/repository/redis"
	"github.com/ogurasousui/company-sites/internal/core/company"
	"github.com/ogurasousui/company-sites/internal/platform/config"
	pg "github.com/ogurasousui/company-sites/internal/platform/db/postgres"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type storage struct {
	repo  company.Repository
	tx    company.TransactionManager
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := pg.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize database pool: %w", err)
		}
		return &storage{
			repo:  postgres.NewCompanyRepository(pool),
			tx:    pg.NewTransactionManager(pool),
			close: pool.Close,
		}, nil

	case config.DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("redis client ready", zap.String("addr", cfg.Redis.Addr))
		return &storage{
			repo: redis.NewCompanyRepository(client, cfg.Redis.KeyPrefix),
			close: func() {
				if err := client.Close(); err != nil {
					logger.Warn("failed to close redis client", zap.Error(err))
				}
			},
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return &storage{repo: memory.NewCompanyRepository(), close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
