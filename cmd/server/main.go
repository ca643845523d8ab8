package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/company-sites/internal/adapters/rest"
	"github.com/ogurasousui/company-sites/internal/adapters/rest/middleware"
	"github.com/ogurasousui/company-sites/internal/core/company"
	"github.com/ogurasousui/company-sites/internal/platform/config"
	"github.com/ogurasousui/company-sites/internal/platform/logging"
	"github.com/ogurasousui/company-sites/internal/platform/server"
	"go.uber.org/zap"
)

func main() {
	os.Exit(serve())
}

// serve はサーバーを起動し、終了コードを返します。os.Exit は呼びません。
func serve() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Printf("failed to initialize logger: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped")
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	sharding, err := buildSharding(cfg.Sharding)
	if err != nil {
		return err
	}

	svc := company.NewService(store.repo, nil, store.tx, sharding)
	logger.Info("company service ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.Strings("sites", svc.Sites()),
		zap.String("policy", string(sharding.Policy)),
	)

	router := rest.NewRouter(svc, logger, rest.RouterOptions{
		Limiter: middleware.NewLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst),
	})

	srv := server.New(router, server.Options{
		ListenAddr:       cfg.Server.ListenAddr,
		HealthListenAddr: cfg.Server.HealthListenAddr,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
		Logger:           logger,
	})

	return srv.Run(ctx)
}

func buildSharding(cfg config.ShardingConfig) (company.Sharding, error) {
	policy, err := company.ParseSitePolicy(cfg.Policy)
	if err != nil {
		return company.Sharding{}, fmt.Errorf("sharding: %w", err)
	}

	var selector company.SiteSelector
	if cfg.Seed != nil {
		selector = company.NewSeededSelector(*cfg.Seed)
	} else {
		selector = company.NewRandomSelector()
	}

	return company.Sharding{
		Sites:    cfg.Sites,
		Selector: selector,
		Policy:   policy,
	}, nil
}
