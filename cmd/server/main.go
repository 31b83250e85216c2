package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/cache"
	"github.com/stemsi/university-api/internal/config"
	"github.com/stemsi/university-api/internal/database"
	"github.com/stemsi/university-api/internal/handler"
	"github.com/stemsi/university-api/internal/logger"
	"github.com/stemsi/university-api/internal/middleware"
	"github.com/stemsi/university-api/internal/repository"
	"github.com/stemsi/university-api/internal/repository/memstore"
	"github.com/stemsi/university-api/internal/router"
	"github.com/stemsi/university-api/internal/service"
	"github.com/stemsi/university-api/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Bool("cache", cfg.CacheEnabled()).
		Msg("Starting University API")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Storage ───────────────────────────────────────────────────────
	var store repository.Store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		store = repository.NewPostgresStore(pool)
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		store = memstore.New()
	default:
		log.Fatal().Str("driver", cfg.StorageDriver).Msg("Unknown STORAGE_DRIVER")
	}

	// ─── Cache ─────────────────────────────────────────────────────────
	var lookups cache.Cache = cache.Nop{}
	var cachePinger handler.Pinger
	if cfg.CacheEnabled() {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		redisCache := cache.NewRedisCache(rdb, cfg.CacheTTL)
		lookups = redisCache
		cachePinger = redisCache
	}

	// ─── Initialize Services ──────────────────────────────────────────
	facultyService := service.NewFacultyService(store, lookups, log)
	groupService := service.NewGroupService(store, lookups, log)
	studentService := service.NewStudentService(store, lookups, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Faculty: handler.NewFacultyHandler(facultyService, log),
		Group:   handler.NewGroupHandler(groupService, log),
		Student: handler.NewStudentHandler(studentService, log),
		System:  handler.NewSystemHandler(store, cachePinger, log),
	}

	// ─── Rate Limiting ─────────────────────────────────────────────────
	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		go limiter.Run(ctx)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r, err := router.SetupRouter(cfg, handlers, log, limiter)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid route table")
	}

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
