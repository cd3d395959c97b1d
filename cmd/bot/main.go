package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/dmikhr/coinpurse-bot/internal/bot"
	"github.com/dmikhr/coinpurse-bot/internal/catalog"
	"github.com/dmikhr/coinpurse-bot/internal/database"
	"github.com/dmikhr/coinpurse-bot/internal/economy"
	"github.com/dmikhr/coinpurse-bot/internal/health"
	"github.com/dmikhr/coinpurse-bot/internal/jobs"
	jobhandlers "github.com/dmikhr/coinpurse-bot/internal/jobs/handlers"
	"github.com/dmikhr/coinpurse-bot/internal/ledgerstore"
	"github.com/dmikhr/coinpurse-bot/internal/lifecycle"
	"github.com/dmikhr/coinpurse-bot/internal/ratelimit"
	"github.com/dmikhr/coinpurse-bot/pkg/config"
	"github.com/dmikhr/coinpurse-bot/pkg/graceful"
	"github.com/dmikhr/coinpurse-bot/pkg/logger"
	redisclient "github.com/dmikhr/coinpurse-bot/pkg/redis"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LoggerOptions())
	slog.SetDefault(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			log.Error("failed to init sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(sentryFlushTimeout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, v, log); err != nil {
		log.Error("bot terminated", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, v *viper.Viper, log *slog.Logger) error {
	shutdown := lifecycle.NewShutdown(log)
	checker := health.NewChecker(log)

	store, db, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		checker.AddCheck("postgres", health.NewDBChecker(db))
		shutdown.Register("postgres", func(context.Context) error { return db.Close() })
	}

	redisClient, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })

	if cfg.Storage.CacheTTL > 0 {
		store = ledgerstore.NewCachedStore(store, redisClient, cfg.Storage.CacheTTL, log)
	}

	cat := cfg.Economy.Catalog()
	engine := economy.NewEngine(store, cat, log, economy.WithConfig(cfg.Economy.EngineConfig()))

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Backend == "memory" {
			limiter = ratelimit.NewMemoryLimiter(log)
		} else {
			limiter = ratelimit.NewRedisLimiter(redisClient, log)
		}
	}

	b, err := bot.New(*cfg, engine, limiter, log)
	if err != nil {
		return err
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	shutdown.Register("bot", func(context.Context) error {
		b.Stop()
		return nil
	})

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	scheduler := jobs.NewScheduler(redisOpt, log)
	if err := scheduler.RegisterTasks(); err != nil {
		return fmt.Errorf("register scheduled tasks: %w", err)
	}
	scheduler.Run()
	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})

	worker := jobs.NewWorker(redisOpt, log)
	worker.RegisterHandler(jobs.TaskTypeEconomySnapshot, jobhandlers.NewSnapshotHandler(store, log))
	go func() {
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped", slog.Any("error", err))
		}
	}()
	shutdown.Register("worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})

	watcher := catalog.NewWatcher(config.ConfigPath(cfg.AppEnv), cat, func() ([]catalog.JobSpec, []catalog.ItemSpec, error) {
		reloaded, err := config.Reload(v)
		if err != nil {
			return nil, nil, err
		}

		return reloaded.Economy.Jobs, reloaded.Economy.Shop, nil
	}, log)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			log.Warn("catalog watcher stopped", slog.Any("error", err))
		}
	}()

	opsServer := graceful.NewServer(log, opsHTTPServer(cfg.Server.Port, checker), cfg.Server.ShutdownTimeout)
	opsErr := make(chan error, 1)
	go func() {
		opsErr <- opsServer.ListenAndServe(ctx)
	}()

	go b.Start()
	log.Info("coinpurse bot started",
		slog.String("env", cfg.AppEnv),
		slog.String("storage", cfg.Storage.Backend),
	)

	select {
	case <-ctx.Done():
	case err := <-opsErr:
		if err != nil {
			log.Error("ops server failed", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return shutdown.Execute(shutdownCtx)
}

func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (ledgerstore.Store, *sql.DB, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}

		if dir := cfg.Database.MigrationsDir; dir != "" {
			if err := database.NewMigrator(db, log).ApplyDir(ctx, dir); err != nil {
				return nil, nil, fmt.Errorf("apply migrations: %w", err)
			}
		}

		return ledgerstore.NewPostgresStore(db, log), db, nil
	case "file":
		store, err := ledgerstore.NewFileStore(cfg.Storage.FilePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}

		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func opsHTTPServer(port string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.Handler())

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
