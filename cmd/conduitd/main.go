// Command conduitd is the integration engine's process entrypoint: it
// loads configuration, wires every storage/transport collaborator behind
// core/manager.ChannelManager, starts persisted channels, and serves the
// admin HTTP API until told to stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/conduithq/conduit/core/config"
	"github.com/conduithq/conduit/core/logger"
	"github.com/conduithq/conduit/core/manager"
	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/sandbox"
	"github.com/conduithq/conduit/core/server"
	"github.com/conduithq/conduit/core/storage"
	"github.com/conduithq/conduit/core/store"
	"github.com/conduithq/conduit/integration/database/pg"
	"github.com/conduithq/conduit/integration/storage/s3"
	"github.com/conduithq/conduit/internal/adminapi"
	"github.com/conduithq/conduit/pkg/broadcast"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	var cfg AppConfig
	config.MustLoad(&cfg)

	log := buildLogger(cfg)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("conduit exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func buildLogger(cfg AppConfig) *slog.Logger {
	if cfg.isProduction() {
		return logger.New(logger.WithProduction("conduitd"))
	}
	return logger.New(logger.WithDevelopment("conduitd"))
}

func run(ctx context.Context, cfg AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := manager.New(manager.WithLogger(log))

	pool, healthcheck, err := wireStores(ctx, cfg, mgr, log)
	if err != nil {
		return fmt.Errorf("wire stores: %w", err)
	}
	if pool != nil {
		defer pool.Close()
	}

	mgr.Logs = store.NewMemoryLogBuffer(cfg.LogBufferCapacity)
	mgr.Metrics = broadcast.NewMemoryBroadcaster[message.MetricUpdate](cfg.MetricsBufferSize)
	mgr.Sandbox = sandbox.NewEngine(
		sandbox.WithTimeout(cfg.SandboxTimeout),
		sandbox.WithLogger(sandboxLogAdapter{log}),
	)

	backend, err := wireStorageBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wire storage backend: %w", err)
	}
	mgr.StorageBackend = backend

	if err := startPersistedChannels(ctx, mgr, log); err != nil {
		return fmt.Errorf("start persisted channels: %w", err)
	}

	if err := mgr.RecoverPendingMessages(ctx); err != nil {
		log.ErrorContext(ctx, "failed to recover pending messages", slog.String("error", err.Error()))
	}

	jobs, err := mgr.BackgroundJobs()
	if err != nil {
		return fmt.Errorf("build background jobs: %w", err)
	}

	adminRouter := adminapi.New(adminapi.Deps{
		Manager:     mgr,
		Channels:    mgr.ChannelStore,
		Messages:    mgr.MessageStore,
		Logs:        mgr.Logs,
		Logger:      log,
		APIKey:      cfg.APIKey,
		Healthcheck: healthcheck,
	})

	srv, err := buildServer(cfg, log)
	if err != nil {
		return fmt.Errorf("build admin server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(gctx, adminRouter))
	g.Go(func() error { return jobs.Run(gctx) })

	log.Info("conduit started", slog.String("addr", fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port)), slog.String("env", cfg.Environment))

	waitErr := g.Wait()

	// jobs.Run and srv.Run both stop themselves on context cancellation, so
	// only the channel registry (which isn't wired to gctx) needs an
	// explicit shutdown call here.
	mgr.ShutdownAll()

	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		return waitErr
	}
	return nil
}

// wireStores selects a Postgres-backed or in-memory store set depending on
// whether DATABASE_URL names a Postgres DSN. The distilled specification's
// default of a local sqlite file has no implementation anywhere in this
// tree's dependency stack, so a non-Postgres DATABASE_URL falls back to
// the in-memory stores instead (see DESIGN.md).
func wireStores(ctx context.Context, cfg AppConfig, mgr *manager.ChannelManager, log *slog.Logger) (*pgxpool.Pool, func(context.Context) error, error) {
	if !isPostgresURL(cfg.DatabaseURL) {
		mgr.ChannelStore = store.NewMemoryChannelStore()
		mgr.MessageStore = store.NewMemoryMessageStore()
		mgr.DedupStore = store.NewMemoryDedupStore(cfg.DedupTTL)
		return nil, nil, nil
	}

	pgCfg := pg.Config{
		ConnectionString:  cfg.DatabaseURL,
		MaxOpenConns:      10,
		MaxIdleConns:      5,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		MaxConnLifetime:   30 * time.Minute,
		RetryAttempts:     5,
		RetryInterval:     2 * time.Second,
		MigrationsPath:    "internal/db/migrations",
		MigrationsTable:   "schema_migrations",
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	mgr.ChannelStore = pg.NewChannelStore(pool)
	mgr.MessageStore = pg.NewMessageStore(pool)
	mgr.DedupStore = pg.NewDedupStore(pool, cfg.DedupTTL)

	return pool, pg.Healthcheck(pool), nil
}

func isPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func wireStorageBackend(ctx context.Context, cfg AppConfig) (storage.Backend, error) {
	if cfg.StorageBackend != "s3" {
		return storage.NewLocalBackend(cfg.StorageDir), nil
	}
	return s3.New(ctx, s3.Config{
		Bucket:         cfg.S3Bucket,
		Region:         cfg.S3Region,
		Endpoint:       cfg.S3Endpoint,
		ForcePathStyle: cfg.S3ForcePath,
	})
}

func startPersistedChannels(ctx context.Context, mgr *manager.ChannelManager, log *slog.Logger) error {
	channels, err := mgr.ChannelStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list persisted channels: %w", err)
	}
	for _, ch := range channels {
		if !ch.Enabled {
			continue
		}
		if err := mgr.StartChannel(ctx, ch); err != nil {
			log.ErrorContext(ctx, "failed to start persisted channel",
				slog.String("channel", ch.Name), slog.String("error", err.Error()))
		}
	}
	return nil
}

func buildServer(cfg AppConfig, log *slog.Logger) (*server.Server, error) {
	srvCfg := server.Config{
		Addr:            fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.Port),
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxHeaderBytes:  1 << 20,
	}
	if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
		srvCfg.TLSCertFile = cfg.TLSCertPath
		srvCfg.TLSKeyFile = cfg.TLSKeyPath
	}
	return server.NewFromConfig(srvCfg, server.WithLogger(log))
}

// sandboxLogAdapter bridges a *slog.Logger into sandbox.Logger, whose
// contract predates slog's structured levels and expects a plain string.
type sandboxLogAdapter struct {
	logger *slog.Logger
}

func (a sandboxLogAdapter) Log(level, message string) {
	switch strings.ToLower(level) {
	case "error":
		a.logger.Error(message)
	case "warn", "warning":
		a.logger.Warn(message)
	case "debug":
		a.logger.Debug(message)
	default:
		a.logger.Info(message)
	}
}
