package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"wholesale/internal/catalog"
	"wholesale/internal/config"
	"wholesale/internal/handler"
	"wholesale/internal/infra/events"
	"wholesale/internal/infra/lock"
	"wholesale/internal/infra/metrics"
	"wholesale/internal/infra/store"
	"wholesale/internal/logger"
	"wholesale/internal/server"
	"wholesale/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	config.LoadDotEnv(".env", "../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//保存先（mongo / postgres / file）
	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	//在庫ロック（REDIS_ADDRがあればRedis）
	locker, closeLocker, err := lock.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatal("connect redis", zap.Error(err))
	}
	defer func() { _ = closeLocker() }()

	//注文イベント（KAFKA_BROKERSがなければ送らない）
	var publisher usecase.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = kp.Close() }()
		publisher = kp
	}

	m := metrics.New()
	idGen := &uuidGenerator{}
	clock := &realClock{}

	ledgerOpts := []usecase.LedgerOption{
		usecase.WithLedgerClock(clock),
		usecase.WithLedgerMetrics(m),
		usecase.WithLedgerLogger(log.Named("ledger")),
		usecase.WithLockedTimeout(lock.DefaultTTL / 2),
	}
	if cfg.SeedInventory {
		ledgerOpts = append(ledgerOpts, usecase.WithSeed(catalog.Default()))
	}
	ledger := usecase.NewInventoryLedger(stores.Inventory, locker, ledgerOpts...)

	//管理者パスワード（平文だけなら起動時にハッシュ化）
	passwordHash := cfg.AdminPasswordHash
	if passwordHash == "" && cfg.AdminPassword != "" {
		passwordHash, err = usecase.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatal("hash admin password", zap.Error(err))
		}
	}
	var issuer usecase.AdminTokenIssuer
	if cfg.AdminJWTSecret != "" {
		issuer = usecase.NewJWTAdminTokenIssuer(cfg.AdminJWTSecret, usecase.AdminTokenTTL)
	}
	if !cfg.AdminConfigured() {
		log.Warn("admin authentication is not configured")
	}

	orderUC := usecase.NewOrderUsecase(ledger, stores.Orders, publisher, idGen, clock, m, log.Named("order"))
	reviewUC := usecase.NewReviewUsecase(stores.Reviews, idGen, clock, log.Named("review"))
	adminAuthUC := usecase.NewAdminAuthUsecase(cfg.AdminEmail, passwordHash, usecase.BcryptVerifier{}, issuer, clock)

	e := server.New(server.Options{
		FEURL:          cfg.FEURL,
		AdminJWTSecret: cfg.AdminJWTSecret,
		Logger:         log,
		Registry:       m.Registry,
	}, server.Handlers{
		Product:    handler.NewProductHandler(ledger, log.Named("product")),
		Review:     handler.NewReviewHandler(reviewUC),
		Order:      handler.NewOrderHandler(orderUC),
		AdminOrder: handler.NewAdminOrderHandler(orderUC),
		AdminAuth:  handler.NewAdminAuthHandler(adminAuthUC),
	})

	if err := server.Run(ctx, e, ":"+cfg.Port, log); err != nil {
		log.Error("http server", zap.Error(err))
	}
}
