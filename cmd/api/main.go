package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nabeel-w/ButterCut-Assignment/internal/archive"
	"github.com/nabeel-w/ButterCut-Assignment/internal/config"
	"github.com/nabeel-w/ButterCut-Assignment/internal/httpapi"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/logger"
	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/shutdown"
	"github.com/nabeel-w/ButterCut-Assignment/internal/store"
	"github.com/nabeel-w/ButterCut-Assignment/internal/worker/queue"
)

func main() {
	log := logger.New(logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "buttercut-api",
	})

	cfg := config.Load()
	log.Info("starting render API", "port", cfg.HTTPPort)

	if err := cfg.EnsureDirs(); err != nil {
		log.LogFatal("failed to create data directories", err)
	}

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	log.Info("connecting to PostgreSQL")
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
	log.Info("PostgreSQL connected")

	st := store.New(pool, log)
	if err := st.EnsureSchema(ctx); err != nil {
		log.LogFatal("failed to ensure schema", err)
	}

	log.Info("connecting to Redis")
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected")

	arc, err := archive.NewProvider(cfg.ArchiveProvider, cfg.ArchiveRoot)
	if err != nil {
		log.LogFatal("failed to initialize archive provider", err)
	}
	log.Info("archive provider initialized", "provider", arc.Name())

	router := httpapi.NewRouter(httpapi.Deps{
		Store:   st,
		Queue:   queue.NewRedisQueue(rdb, cfg.QueueName),
		Archive: arc,
		Cfg:     cfg,
		Log:     log,
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
