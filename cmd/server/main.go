package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gamerank/leaderboard/internal/auth"
	"github.com/gamerank/leaderboard/internal/config"
	"github.com/gamerank/leaderboard/internal/handler"
	"github.com/gamerank/leaderboard/internal/kafka"
	"github.com/gamerank/leaderboard/internal/metrics"
	"github.com/gamerank/leaderboard/internal/postgres"
	"github.com/gamerank/leaderboard/internal/redis"
	"github.com/gamerank/leaderboard/internal/service"
	"github.com/gamerank/leaderboard/internal/websocket"
	"github.com/gamerank/leaderboard/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis rank index
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	rankIndex, err := redis.NewRankIndex(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rankIndex.Close()
	logger.Info("connected to Redis")

	// Initialize PostgreSQL ledger
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	ledger, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := ledger.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Service-level metrics land on the default registry, which /metrics serves
	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize services
	authManager := auth.NewManager(&cfg.Auth)
	leaderboardService := service.NewLeaderboardService(
		ledger,
		rankIndex,
		authManager,
		&cfg.Leaderboard,
		m,
		logger,
	)

	// Set the WebSocket hub on the service for broadcasting
	leaderboardService.SetHub(wsHub)

	// Initialize the reconciler
	reconciler := worker.NewReconciler(
		ledger,
		rankIndex,
		&cfg.Reconciler,
		m,
		logger,
	)
	leaderboardService.SetRepairQueue(reconciler)

	// Rebuild the rank index from the ledger on startup (recovery)
	logger.Info("rebuilding rank index from ledger")
	if err := reconciler.RebuildAll(ctx); err != nil {
		logger.Warn("failed to rebuild rank index on startup", "error", err)
	}

	// Start the reconciler
	if cfg.Reconciler.Enabled {
		if err := reconciler.Start(ctx); err != nil {
			logger.Error("failed to start reconciler", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for high-load score ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, leaderboardService, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler with WebSocket hub
	httpHandler := handler.NewHandler(leaderboardService, wsHub, &cfg.Leaderboard, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop the reconciler
	if reconciler.IsRunning() {
		if err := reconciler.Stop(); err != nil {
			logger.Error("failed to stop reconciler", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
