package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/shopbook/internal/adapter/http"
	"github.com/iho/shopbook/internal/adapter/http/handler"
	"github.com/iho/shopbook/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/shopbook/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/shopbook/internal/adapter/repository/redis"
	"github.com/iho/shopbook/internal/infrastructure/auth"
	"github.com/iho/shopbook/internal/infrastructure/config"
	"github.com/iho/shopbook/internal/infrastructure/logger"
	"github.com/iho/shopbook/internal/infrastructure/metrics"
	"github.com/iho/shopbook/internal/infrastructure/postgres"
	"github.com/iho/shopbook/internal/infrastructure/redis"
	"github.com/iho/shopbook/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	statsRepo := postgresRepo.NewStatsRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	orderIDs := postgresRepo.NewOrderIDAllocator(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log.Logger)

	// Initialize use cases
	m := metrics.New()
	resolver := usecase.NewProfitLossResolver(entryRepo, balanceRepo, m)
	entryUC := usecase.NewEntryUseCase(txManager, entryRepo, balanceRepo, orderIDs, resolver, idGen, retrier, m)
	statsUC := usecase.NewStatsUseCase(statsRepo, balanceRepo, cache)
	userUC := usecase.NewUserUseCase(userRepo, idGen)

	// Initialize handlers
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	entryHandler := handler.NewEntryHandler(entryUC, statsUC)
	statsHandler := handler.NewStatsHandler(statsUC)
	authHandler := handler.NewAuthHandler(userUC, jwtManager)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := newRateLimiter(cfg)
	if rateLimiter != nil {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				rateLimiter.CleanupLimiters()
			}
		}()
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntryHandler:     entryHandler,
		StatsHandler:     statsHandler,
		AuthHandler:      authHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newRateLimiter returns nil when rate limiting is disabled, which the router
// treats as "skip the middleware".
func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if !cfg.RateLimitEnabled || cfg.RateLimitRPS <= 0 {
		return nil
	}

	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}
