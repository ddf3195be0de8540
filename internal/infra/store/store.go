package store

import (
	"context"
	"fmt"

	"wholesale/internal/config"
	"wholesale/internal/infra/db"
	infraRepo "wholesale/internal/infra/repository"
	repo "wholesale/internal/repository"

	"go.uber.org/zap"
)

// 設定で選んだ保存先のリポジトリ一式
type Stores struct {
	Driver    string
	Inventory repo.InventoryCatalogStore
	Orders    repo.OrderRepository
	Reviews   repo.ReviewRepository

	closers []func(context.Context) error
}

func (s *Stores) Close(ctx context.Context) error {
	var first error
	for _, c := range s.closers {
		if err := c(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Openはcfg.StoreDriverに応じて接続する（autoはLoadで解決済み）
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, database, err := db.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := db.EnsureMongoIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("store opened", zap.String("driver", cfg.StoreDriver), zap.String("db", cfg.MongoDB))
		return &Stores{
			Driver:    cfg.StoreDriver,
			Inventory: infraRepo.NewInventoryMongoRepository(database),
			Orders:    infraRepo.NewOrderMongoRepository(database),
			Reviews:   infraRepo.NewReviewMongoRepository(database),
			closers:   []func(context.Context) error{client.Disconnect},
		}, nil

	case config.StoreDriverPostgres:
		gormDB, err := db.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(gormDB); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		logger.Info("store opened", zap.String("driver", cfg.StoreDriver))
		return &Stores{
			Driver:    cfg.StoreDriver,
			Inventory: infraRepo.NewInventoryGormRepository(gormDB),
			Orders:    infraRepo.NewOrderGormRepository(gormDB),
			Reviews:   infraRepo.NewReviewGormRepository(gormDB),
			closers: []func(context.Context) error{
				func(context.Context) error { return sqlDB.Close() },
			},
		}, nil

	case config.StoreDriverFile:
		logger.Info("store opened", zap.String("driver", cfg.StoreDriver), zap.String("dir", cfg.DataDir))
		return &Stores{
			Driver:    cfg.StoreDriver,
			Inventory: infraRepo.NewInventoryFileRepository(cfg.DataDir),
			Orders:    infraRepo.NewOrderFileRepository(cfg.DataDir),
			Reviews:   infraRepo.NewReviewFileRepository(cfg.DataDir),
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
