package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"spacenow/internal/analytics"
	"spacenow/internal/assistant"
	"spacenow/internal/cache"
	"spacenow/internal/config"
	"spacenow/internal/feed"
	"spacenow/internal/handlers"
	"spacenow/internal/nasa"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Configure logger
	logger, err := setupLogger(&cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting SpaceNow! AstroFeed Server",
		zap.String("version", "1.0.0"),
		zap.String("address", cfg.Server.GetAddress()),
	)

	// Initialize cache store
	store, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to cache", zap.Error(err))
	}
	logger.Info("Cache ready", zap.String("backend", cfg.Cache.Backend))

	// Upstream NASA client and gateway
	client := nasa.NewClient(&nasa.ClientConfig{
		Timeout:     cfg.NASA.Timeout,
		Retries:     cfg.NASA.Retries,
		BackoffBase: cfg.NASA.BackoffBase,
	}, logger)
	gateway := nasa.NewGateway(client, cfg.NASA.BaseURL, cfg.NASA.APIKey, logger)

	// Domain services
	analyticsSvc := analytics.NewService(gateway, logger)
	feedSvc := feed.NewService(gateway, logger)
	assistantSvc := assistant.NewService(client, cfg.Cohere.BaseURL, cfg.Cohere.APIKey, logger)

	// Configure Gin
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := handlers.New(gateway, analyticsSvc, feedSvc, assistantSvc, store, cfg.Cache.SingleFlight, logger)
	router := handlers.NewRouter(handler, logger)

	// Configure HTTP server
	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newStore selects the cache backend. Memory is the default; redis is
// opt-in for multi-instance deployments.
func newStore(cfg *config.Config, logger *zap.Logger) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisStore(&cfg.Cache, logger)
	case "", "memory":
		return cache.NewMemoryStore(logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// setupLogger configures the logger according to the configuration
func setupLogger(cfg *config.LoggerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: cfg.Format,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{cfg.OutputPath},
		ErrorOutputPaths: []string{cfg.OutputPath},
	}

	return config.Build()
}
