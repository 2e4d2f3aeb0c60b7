package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"applytrack/internal/analysis"
	"applytrack/internal/api/handlers"
	"applytrack/internal/api/routes"
	"applytrack/internal/archive"
	"applytrack/internal/config"
	"applytrack/internal/events"
	grpcserver "applytrack/internal/grpc/server"
	"applytrack/internal/history"
	"applytrack/internal/llm"
	"applytrack/internal/logging"
	"applytrack/internal/mux"
	"applytrack/internal/storage"
	"applytrack/internal/tracker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting applytrack", map[string]interface{}{
		"database": cfg.Database.Driver,
		"llm":      cfg.LLM.Provider,
	})

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", map[string]interface{}{"error": err.Error()})
	}
	defer store.Close()

	// LLM features fail per request when the provider cannot be started
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(ctx); err != nil {
		logger.Warn("LLM manager did not start - analysis endpoints will fail", map[string]interface{}{"error": err.Error()})
	}

	opts := []tracker.Option{}

	if cfg.Redis.URL != "" {
		redisHistory, err := history.NewRedisHistory(cfg)
		if err != nil {
			logger.Fatal("Failed to configure Redis history", map[string]interface{}{"error": err.Error()})
		}
		if err := redisHistory.Ping(ctx); err != nil {
			logger.Warn("Redis is unreachable, history writes will be skipped until it recovers", map[string]interface{}{"error": err.Error()})
		}
		defer redisHistory.Close()
		opts = append(opts, tracker.WithHistory(redisHistory))
	}

	if cfg.SpacesEnabled() {
		spaces, err := archive.NewSpacesArchive(cfg)
		if err != nil {
			logger.Fatal("Failed to configure upload archive", map[string]interface{}{"error": err.Error()})
		}
		opts = append(opts, tracker.WithArchive(spaces))
	}

	if cfg.Events.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg)
		if err != nil {
			logger.Warn("Event publisher unavailable, events are dropped", map[string]interface{}{"error": err.Error()})
		} else {
			defer publisher.Close()
			opts = append(opts, tracker.WithEvents(publisher))
		}
	}

	svc := tracker.NewService(store, analysis.NewGateway(llmManager), cfg, opts...)

	llmProbe := func(ctx context.Context) error {
		if !llmManager.IsHealthy() {
			return fmt.Errorf("provider %s unhealthy", llmManager.GetProviderName())
		}
		return nil
	}

	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, cfg, svc, map[string]handlers.Probe{
		"store": store.Ping,
		"llm":   llmProbe,
	})

	var grpcServer *grpcserver.Server
	if cfg.Server.EnableGRPC {
		grpcServer = grpcserver.NewServer(map[string]grpcserver.Probe{
			"store": store.Ping,
			"llm":   llmProbe,
		})
	}

	multiplexer := mux.NewMultiplexer(cfg, e, grpcServer)
	if err := multiplexer.Start(cfg.Address()); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{"error": err.Error()})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := multiplexer.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Stopping LLM manager...")
	if err := llmManager.Stop(); err != nil {
		logger.Error("Error stopping LLM manager", map[string]interface{}{"error": err.Error()})
	}

	logger.Info("Server shutdown complete")
}
