package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumesync/internal/config"
	"resumesync/internal/database"
	"resumesync/internal/events"
	"resumesync/internal/metrics"
	"resumesync/internal/storage"
	"resumesync/internal/tasks"
	"resumesync/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database failed", slog.Any("error", err))
		}
	}()

	archives, err := storage.NewArchiveStore(cfg.MinIO)
	if err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr(), err)
	}

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeDocumentArchive,
		worker.NewArchiveTaskHandler(database.NewDocumentStore(db), archives, events.NewBus(redisClient), logger))
	mux.Handle(tasks.TypeDocumentPurge, worker.NewPurgeTaskHandler(archives, logger))

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()}, asynq.Config{
		Concurrency: cfg.Archive.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	logger.Info("worker started",
		slog.String("redis_addr", cfg.Redis.Addr()),
		slog.String("bucket", cfg.MinIO.Bucket),
		slog.Int("concurrency", cfg.Archive.Concurrency),
	)
	// Run blocks until SIGTERM/SIGINT and drains in-flight tasks.
	return server.Run(mux)
}

// asynqLogger adapts slog to asynq.Logger.
type asynqLogger struct{ l *slog.Logger }

func newAsynqLogger(l *slog.Logger) asynqLogger {
	return asynqLogger{l: l.With(slog.String("component", "asynq"))}
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) {
	a.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}
