package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/elearn-be/internal/config"
	"github.com/hongminglow/elearn-be/internal/filestore"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/ratelimit"
	"github.com/hongminglow/elearn-be/internal/server"
	"github.com/hongminglow/elearn-be/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger.Slog())

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer store.Close()

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init file storage: %v", err)
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		log.Fatalf("init rate limiter: %v", err)
	}
	defer closeLimiter()

	srv := server.New(cfg, server.Deps{
		Store:   store,
		Files:   files,
		Limiter: limiter,
		Logger:  logger,
	})

	go func() {
		logger.Info(ctx, "elearn backend listening", "addr", cfg.HTTPAddress(), "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error(ctxShutdown, "graceful shutdown error", "error", err)
	}
}

func newFileStore(ctx context.Context, cfg config.Config) (filestore.Store, error) {
	if cfg.StorageDriver == config.StorageS3 {
		s3, err := filestore.NewS3(ctx, filestore.S3Options{
			Bucket:     cfg.S3Bucket,
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	return filestore.NewLocal(cfg.StorageLocalDir), nil
}

// newLimiter prefers the shared Redis limiter so several instances agree on
// login budgets; without REDIS_URL each process counts on its own.
func newLimiter(ctx context.Context, cfg config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemory(cfg.LoginRatePerMinute), func() {}, nil
	}
	rl, err := ratelimit.NewRedisFromURL(ctx, cfg.RedisURL, cfg.LoginRatePerMinute)
	if err != nil {
		return nil, nil, err
	}
	return rl, func() { _ = rl.Close() }, nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
