package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/cartwise/cart-service/config"
	_ "github.com/cartwise/cart-service/docs"
	"github.com/cartwise/cart-service/internal/cachestore"
	"github.com/cartwise/cart-service/internal/catalog"
	"github.com/cartwise/cart-service/internal/database"
	"github.com/cartwise/cart-service/internal/engine"
	"github.com/cartwise/cart-service/internal/handlers"
	"github.com/cartwise/cart-service/internal/middleware"
	"github.com/cartwise/cart-service/internal/telemetry"
)

// @title Cart Service API
// @version 1.0
// @description Multi-store cart optimization service.
// @BasePath /internal

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting cart service")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "",
		Endpoint:    cfg.Telemetry.Endpoint,
		Environment: cfg.Telemetry.Environment,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	cacheStore, closeCache, err := buildCacheStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize result cache backend")
	}
	defer closeCache()

	catalogClient := catalog.NewClient(cfg.Catalog)
	eng := engine.New(catalogClient, cacheStore, &cfg.Engine)
	handlers.InitEngine(eng)

	logger.Info().
		Str("cache_backend", cfg.Cache.Backend).
		Str("catalog_url", cfg.Catalog.BaseURL).
		Msg("Optimization engine ready")

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuth(cfg.Server.InternalAPIKey))
	internal.Use(middleware.ServiceRateLimit(50, 100))
	{
		internal.GET("/health", handlers.HealthCheck)

		cart := internal.Group("/cart")
		{
			cart.POST("/optimize", handlers.OptimizeCart)
			cart.POST("/optimize/compare", handlers.CompareStrategies)
			cart.POST("/optimize/export", handlers.ExportComparison)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

// buildCacheStore picks the result cache backend. The memory backend needs no
// external services; the postgres backend shares cached results across
// replicas and requires DATABASE_URL.
func buildCacheStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (engine.CacheStore, func(), error) {
	switch cfg.Cache.Backend {
	case "postgres":
		dbURL := config.GetDatabaseURL()
		if dbURL == "" {
			return nil, nil, fmt.Errorf("cache backend postgres requires DATABASE_URL")
		}
		if err := database.Connect(
			ctx,
			dbURL,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info().Msg("Database connected")

		store, err := cachestore.NewPostgres(ctx, database.Pool(), cfg.Cache.SweepInterval)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return store, func() {
			store.Close()
			database.Close()
		}, nil

	case "memory", "":
		store := cachestore.NewMemory(cfg.Cache.SweepInterval)
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "cart-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("HTTP request")
	})
}
