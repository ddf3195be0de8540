package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wholesale/internal/catalog"
	"wholesale/internal/config"
	"wholesale/internal/infra/lock"
	"wholesale/internal/infra/store"
	"wholesale/internal/logger"
	"wholesale/internal/usecase"

	"go.uber.org/zap"
)

// カタログファイルに合わせて在庫を追加・更新・削除する
func main() {
	config.LoadDotEnv(".env", "../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	catalogPath := flag.String("catalog", cfg.CatalogFile, "catalog YAML file")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, *catalogPath, *timeout, log); err != nil {
		log.Error("sync inventory failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "sync-inventory:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, catalogPath string, timeout time.Duration, log *zap.Logger) error {
	products, err := catalog.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", catalogPath, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = stores.Close(context.Background()) }()

	locker, closeLocker, err := lock.FromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = closeLocker() }()

	uc := usecase.NewCatalogSyncUsecase(stores.Inventory, locker, nil, log)
	uc.SetLockedTimeout(lock.DefaultTTL / 2)
	res, err := uc.Sync(ctx, products)
	if err != nil {
		return err
	}

	fmt.Printf("Parsed %d products from %s\n", res.Parsed, catalogPath)
	fmt.Printf("Inventory sync complete (%s): inserted %d, updated %d, deleted %d\n",
		stores.Driver, res.Inserted, res.Updated, res.Deleted)
	return nil
}
