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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ShopStream-LLC/shopstream-app/internal/app"
	"github.com/ShopStream-LLC/shopstream-app/internal/config"
	"github.com/ShopStream-LLC/shopstream-app/internal/database"
	"github.com/ShopStream-LLC/shopstream-app/internal/logging"
	"github.com/ShopStream-LLC/shopstream-app/internal/mux"
	"github.com/ShopStream-LLC/shopstream-app/internal/redis"
	"github.com/ShopStream-LLC/shopstream-app/internal/server"
	"github.com/ShopStream-LLC/shopstream-app/internal/shopify"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, appSvc *app.Service) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		appSvc.Stop()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	streamRepo := database.NewStreamRepo(pool)
	productRepo := database.NewProductRepo(pool)
	eventRepo := database.NewEventRepo(pool)
	clipRepo := database.NewClipRepo(pool)

	livenessStore := redis.NewLivenessStore(redisClient, cfg.LivenessTTL)
	videoClient := mux.NewClient(cfg.MuxTokenID, cfg.MuxTokenSecret, cfg.LatencyMode)
	verifier := shopify.NewTokenVerifier(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret)

	appSvc := app.NewService(streamRepo, productRepo, eventRepo, clipRepo, livenessStore, videoClient, clock, app.Options{
		AutoGoLive:     cfg.AutoGoLive,
		AssetRetention: cfg.AssetRetention,
	})

	srv := server.NewServer(cfg, appSvc, verifier, pool, redisClient, clock)

	done := runGracefulShutdown(srv, appSvc)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
