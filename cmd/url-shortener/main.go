package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cs-tungthanh/fcc-microservices/internal/cache"
	"github.com/cs-tungthanh/fcc-microservices/internal/config"
	"github.com/cs-tungthanh/fcc-microservices/internal/handler"
	"github.com/cs-tungthanh/fcc-microservices/internal/logger"
	"github.com/cs-tungthanh/fcc-microservices/internal/metrics"
	"github.com/cs-tungthanh/fcc-microservices/internal/middleware"
	"github.com/cs-tungthanh/fcc-microservices/internal/repository"
	"github.com/cs-tungthanh/fcc-microservices/internal/server"
	"github.com/cs-tungthanh/fcc-microservices/internal/service"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always runs
func run() int {
	// ============================================================
	// LOAD CONFIGURATION
	// ============================================================
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		return 1
	}

	cfg.Log.Service = "url-shortener"
	log := logger.New(cfg.Log)
	log.Info("starting url-shortener",
		"level", cfg.Log.Level,
		"environment", cfg.App.Environment,
		"driver", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ============================================================
	// INITIALIZE LAYERS
	// ============================================================
	db, err := repository.Open(ctx, &cfg.Database)
	if err != nil {
		log.Error("failed to initialize database", "error", err.Error())
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err.Error())
		}
	}()

	m := metrics.New("url_shortener")
	opts := []service.ShortURLOption{
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithMaxAttempts(cfg.Shortener.MaxAttempts),
	}

	// ============================================================
	// INITIALIZE REDIS CACHE
	// ============================================================
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Error("failed to connect to Redis", "error", err.Error())
			return 1
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("failed to close Redis client", "error", err.Error())
			}
		}()
		opts = append(opts, service.WithCache(redisCache))
		log.Info("redis cache enabled", "addr", cfg.Redis.Addr)
	}

	svc := service.NewShortURLService(repository.NewShortURLRepository(db), opts...)

	router := handler.NewRouter(
		handler.RouterOptions{Metrics: m, StaticDir: cfg.App.StaticDir, Health: db},
		handler.NewShortURLHandler(svc, log),
	)

	middlewares, stopMiddleware := middleware.Default(cfg, log)
	defer stopMiddleware()

	if err := server.Run(ctx, &cfg.Server, middleware.Chain(router, middlewares...), log); err != nil {
		log.Error("server error", "error", err.Error())
		return 1
	}
	return 0
}
