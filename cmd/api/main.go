package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vinay02022/testinBackend/internal/app"
	"github.com/vinay02022/testinBackend/internal/cache"
	"github.com/vinay02022/testinBackend/internal/config"
	"github.com/vinay02022/testinBackend/internal/handlers"
	"github.com/vinay02022/testinBackend/internal/jobs"
	"github.com/vinay02022/testinBackend/internal/log"
	"github.com/vinay02022/testinBackend/internal/notify"
	"github.com/vinay02022/testinBackend/internal/security"
	"github.com/vinay02022/testinBackend/internal/server"
	"github.com/vinay02022/testinBackend/internal/service"
	"github.com/vinay02022/testinBackend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open stores")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.Store.Driver != "memory" {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		logger.Warn().Err(err).Msg("redis unavailable; maintenance scheduling disabled")
		redisClient = nil
	}

	notifier := newNotifier(ctx, cfg, logger)

	codec := security.NewTokenCodec(cfg.Security.JWTAccessSecret, cfg.Security.JWTAccessTTL)
	services := handlers.Services{
		Auth:     service.NewAuthService(stores.Users, stores.RefreshTokens, codec, notifier, cfg.Security, logger),
		Users:    service.NewUserService(stores.Users, logger),
		Comments: service.NewCommentService(stores.Comments, logger),
		Tokens:   codec,
	}
	probes := handlers.Probes{Database: stores.Probe}
	if redisClient != nil {
		probes.Cache = cache.Probe(redisClient)
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, services, probes)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Redis.Stream, cfg.Jobs.CleanupSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, stores, redisClient)
}

// newNotifier writes reset messages to the object store outbox when one is
// configured and falls back to logging otherwise.
func newNotifier(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) notify.Notifier {
	if !cfg.Storage.Enabled() {
		return notify.NewLogNotifier(logger)
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}
	return notify.NewObjectOutbox(objectStore)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, stores *app.Stores, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop(5 * time.Second)

	stores.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
