package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/formrelay/relay/internal/config"
	"github.com/formrelay/relay/internal/logger"
	"github.com/formrelay/relay/internal/platform/ratelimit"
	"github.com/formrelay/relay/internal/platform/validation"
	"github.com/formrelay/relay/internal/secrets"
	"github.com/formrelay/relay/internal/version"

	// Feature slices (factories)
	accounts "github.com/formrelay/relay/internal/accounts"
	dispatch "github.com/formrelay/relay/internal/dispatch"
	dsvc "github.com/formrelay/relay/internal/dispatch/service"
	events "github.com/formrelay/relay/internal/events/service"
	origins "github.com/formrelay/relay/internal/origins"
	pages "github.com/formrelay/relay/internal/pages"
)

// @title           Relay API
// @version         1.0
// @description     Multi-tenant outbound email relay for landing page inquiries.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

func main() {
	if handleCLICommand(os.Args[1:]) {
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	log.Info().Str("addr", cfg.AppAddr).Str("version", version.Version).Msg("starting api server")

	cipher, err := secrets.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to initialize credential cipher")
	}

	// Init Postgres
	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DATABASE_URL")
	}
	pgPool, err := pgxpool.NewWithConfig(context.Background(), pgCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create pg pool")
	}
	defer pgPool.Close()

	// Init Redis (shared rate limit counters)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer redisClient.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())

	// Validator
	e.Validator = validation.New()

	// Shared collaborators
	transmitter := dsvc.NewSMTPTransmitter(cfg)
	publisher := events.NewLogger(log)
	rlStore := ratelimit.NewRedisStore(redisClient)

	// Register domain routes via factories
	accounts.Register(e, pgPool, cfg, cipher, transmitter)
	pages.Register(e, pgPool, cfg)
	originsSvc := origins.Register(e, pgPool, cfg, log)
	dispatch.Register(e, pgPool, cfg, log, cipher, transmitter, publisher, originsSvc, rlStore)

	// Health endpoint pings DB and Redis
	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
		defer cancel()

		dbStatus := "ok"
		if err := pgPool.Ping(ctx); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "ok"
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			cacheStatus = "down"
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"version": version.Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
			"db":      dbStatus,
			"cache":   cacheStatus,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Start server
	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
