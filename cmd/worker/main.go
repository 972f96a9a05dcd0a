package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nabeel-w/ButterCut-Assignment/internal/archive"
	"github.com/nabeel-w/ButterCut-Assignment/internal/config"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/shutdown"
	"github.com/nabeel-w/ButterCut-Assignment/internal/render"
	"github.com/nabeel-w/ButterCut-Assignment/internal/store"
	"github.com/nabeel-w/ButterCut-Assignment/internal/worker"
	"github.com/nabeel-w/ButterCut-Assignment/internal/worker/queue"
)

func main() {
	log := logger.New(logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "buttercut-worker",
	})

	cfg := config.Load()
	log.Info("starting render worker", "max_workers", cfg.MaxWorkers)

	if err := cfg.EnsureDirs(); err != nil {
		log.LogFatal("failed to create data directories", err)
	}

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 60*time.Second)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	st := store.New(pool, log)
	if err := st.EnsureSchema(ctx); err != nil {
		log.LogFatal("failed to ensure schema", err)
	}

	arc, err := archive.NewProvider(cfg.ArchiveProvider, cfg.ArchiveRoot)
	if err != nil {
		log.LogFatal("failed to initialize archive provider", err)
	}
	log.Info("archive provider initialized", "provider", arc.Name())

	supervisor := render.NewSupervisor(st, render.Config{
		FFmpegBin:  cfg.FFmpegBin,
		FFprobeBin: cfg.FFprobeBin,
		AssetsDir:  cfg.AssetsDir,
		OutputDir:  cfg.OutputDir,
	}, log)

	// Run drains until the signal-canceled context fires, then waits for
	// in-flight renders before the shutdown manager closes the connections.
	err = worker.Run(shutdownMgr.Context(), worker.Deps{
		Queue:      queue.NewRedisQueue(rdb, cfg.QueueName),
		Renderer:   supervisor,
		Jobs:       st,
		Archive:    arc,
		MaxWorkers: cfg.MaxWorkers,
		Log:        log,
	})
	if err != nil && err != context.Canceled {
		log.Error("worker loop exited", "error", err.Error())
	}

	shutdownMgr.Shutdown()
}
