package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aspectd/aspectd/internal"
	"github.com/aspectd/aspectd/internal/classifier"
	"github.com/aspectd/aspectd/internal/handler"
	"github.com/aspectd/aspectd/internal/metrics"
	"github.com/aspectd/aspectd/internal/middleware"
	"github.com/aspectd/aspectd/internal/probe"
	"github.com/aspectd/aspectd/internal/resolver"
	"github.com/aspectd/aspectd/internal/service"
	"github.com/aspectd/aspectd/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize object storage
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderS3:
		store, err = storage.NewS3Storage(storage.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			DefaultBucket:   cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
		}, logger)
		if err != nil {
			return fmt.Errorf("s3 storage initialization failed: %w", err)
		}
	case storage.ProviderLocal:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath:      cfg.LocalStoragePath,
			DefaultBucket: cfg.LocalStorageBucket,
		}, logger)
		if err != nil {
			return fmt.Errorf("local storage initialization failed: %w", err)
		}
	default:
		logger.Info("object storage disabled, analyzing payload evidence only")
	}

	// Initialize the engine
	var prober probe.Prober
	if cfg.ProbeEnabled && store != nil {
		prober = probe.NewImagingProber()
	}

	res := resolver.New(cfg.Resolver, logger)
	cls := classifier.New(cfg.RatioPolicy, logger)
	analyzeService := service.NewAnalyzeService(store, prober, res, cls, logger)

	// Initialize handlers
	analyzeHandler := handler.NewAnalyzeHandler(analyzeService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Analysis API
	analyzeHandler.RegisterRoutes(mux)

	// Middleware stack
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	root := metrics.Middleware(loggingMw.Handler(mux))

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started",
			"address", server.Addr,
			"env", cfg.Env,
			"storage", cfg.StorageProvider,
			"policy", cfg.RatioPolicy.String(),
			"probe", prober != nil,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
