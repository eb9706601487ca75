package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"fooddelivery/internal/config"
	"fooddelivery/internal/database"
	"fooddelivery/internal/downstream"
	"fooddelivery/internal/handler"
	"fooddelivery/internal/mw"
	"fooddelivery/internal/service"
	"fooddelivery/internal/storage"
	"fooddelivery/internal/worker"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	slog.SetDefault(newLogger(cfg.LogLevel, cfg.LogFormat))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(ctx, db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	// Infrastructure
	probe := worker.NewAvailabilityProbe(db, cfg.ProbeInterval)
	tasks := worker.NewDispatcher()
	gateway := downstream.NewClient(cfg.DownstreamBaseURL)

	var cache service.CatalogCache
	if cfg.RedisAddr != "" {
		redisCache := storage.NewRedisCatalogCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		defer redisCache.Close()
		cache = redisCache
		slog.Info("catalog cache enabled", "redis", cfg.RedisAddr, "ttl", cfg.CatalogCacheTTL)
	}

	events := service.NoopPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher := storage.NewKafkaPublisher(storage.NewOrderEventWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic))
		defer func() {
			if err := publisher.Close(); err != nil {
				slog.Error("failed to close kafka writer", "error", err)
			}
		}()
		events = publisher
		slog.Info("order events enabled", "brokers", strings.Join(cfg.KafkaBrokers, ","), "topic", cfg.KafkaOrderTopic)
	}

	// Services
	accounts := service.NewAccountService(storage.NewUserRepository(db), probe)
	orders := service.NewOrderService(
		storage.NewOrderRepository(db),
		storage.NewUserRepository(db),
		gateway,
		events,
		tasks,
		probe,
	)
	orders.SetETATimeout(cfg.ETATimeout)
	catalog := service.NewCatalogService(gateway, cache, cfg.CatalogCacheTTL)

	router := handler.NewRouter(handler.RouterConfig{
		Accounts:   accounts,
		Orders:     orders,
		Catalog:    catalog,
		Tokens:     handler.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		QR:         service.TrackingQR{BaseURL: cfg.PublicURL},
		Store:      probe,
		Delivery:   gateway,
		Limiter:    mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute),
		JWTSecret:  cfg.JWTSecret,
		CORSOrigin: cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
	}

	go probe.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress, "delivery", cfg.DownstreamBaseURL)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop probe
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := tasks.Wait(ctxShut); err != nil {
		slog.Warn("background tasks still running at exit", "error", err)
	}

	slog.Info("server stopped")
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
