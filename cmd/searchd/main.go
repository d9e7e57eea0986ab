package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mklincoln/factorymap/internal/cache"
	"github.com/mklincoln/factorymap/internal/cache/redisstore"
	"github.com/mklincoln/factorymap/internal/core/config"
	"github.com/mklincoln/factorymap/internal/core/observability"
	"github.com/mklincoln/factorymap/internal/core/server"
	"github.com/mklincoln/factorymap/internal/invalidation/kafkaconsumer"
	"github.com/mklincoln/factorymap/internal/logger"
	"github.com/mklincoln/factorymap/internal/service"
	"github.com/mklincoln/factorymap/internal/store"
	"github.com/mklincoln/factorymap/internal/store/memstore"
	"github.com/mklincoln/factorymap/internal/store/postgres"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	corpusFlag := flag.String("corpus", "", "path to a JSON corpus file (memory driver)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		errLog := logger.Build(logger.Config{Level: "error"}, os.Stderr)
		errLog.Error().Err(err).Msg("config load failed")
		return 1
	}
	if *corpusFlag != "" {
		cfg.CorpusPath = strings.TrimSpace(*corpusFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Component: "searchd",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting searchd",
		"addr", cfg.Addr, "version", Version, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var base store.Store
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Options{
			Username:           cfg.Postgres.Username,
			Password:           cfg.Postgres.Password,
			Host:               cfg.Postgres.Host,
			Port:               cfg.Postgres.Port,
			Database:           cfg.Postgres.Database,
			SslMode:            cfg.Postgres.SslMode,
			ConnMaxLifetime:    cfg.Postgres.ConnMaxLifetime,
			MaxOpenConnections: cfg.Postgres.MaxOpenConnections,
		})
		if err != nil {
			appLog.Error("postgres setup failed", "err", err)
			return 1
		}
		defer func() { _ = pg.Close() }()
		base = pg
	default:
		if cfg.CorpusPath != "" {
			ms, err := memstore.Load(cfg.CorpusPath)
			if err != nil {
				appLog.Error("corpus load failed", "path", cfg.CorpusPath, "err", err)
				return 1
			}
			appLog.Info("corpus loaded", "path", cfg.CorpusPath, "companies", ms.Len())
			base = ms
		} else {
			appLog.Warn("no corpus configured; serving an empty directory")
			base = memstore.New(nil)
		}
	}

	st := store.NewRetrying(base, appLog, cfg.RetryAttempts, cfg.RetryBaseDelay)

	var respCache cache.Interface
	if cfg.RedisAddr != "" {
		rc, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis setup failed", "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		respCache = rc
	}

	svc := service.New(appLog, st, cfg.MapRowCap, respCache, cfg.CacheTTL)

	if cfg.Invalidation.Enabled && respCache != nil {
		kc := kafkaconsumer.FromBrokerList(
			cfg.Invalidation.Brokers, cfg.Invalidation.Topic, cfg.Invalidation.GroupID)
		kc.SessionTimeout = cfg.Invalidation.Session
		kc.DedupeSize = cfg.Invalidation.DedupeSz
		consumer := kafkaconsumer.New(kc, appLog, respCache)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("invalidation consumer exited", "err", err)
			}
		}()
	}

	if err := server.Run(ctx, cfg, appLog, svc, st); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
