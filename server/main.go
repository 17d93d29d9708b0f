package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-transform/internal/config"
	"github.com/phambaophuc/photo-transform/internal/http/handlers"
	"github.com/phambaophuc/photo-transform/internal/http/middleware"
	"github.com/phambaophuc/photo-transform/internal/http/routes"
	"github.com/phambaophuc/photo-transform/internal/services/photo"
	"github.com/phambaophuc/photo-transform/internal/services/processor"
	"github.com/phambaophuc/photo-transform/internal/services/queue"
	"github.com/phambaophuc/photo-transform/internal/services/storage"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Set GOMAXPROCS
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof)); err != nil {
		logger.Warn("Failed to set GOMAXPROCS", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)

	// Initialize services
	imageProcessor := processor.NewImageProcessor(cfg.Processor.DefaultQuality)

	storageService, err := storage.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer storageService.Close()

	photoService := photo.NewService(imageProcessor, storageService, logger, cfg.Storage.MaxFileSize)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Continue without queue service for basic functionality
	var jobQueue handlers.JobQueue
	runner := queue.NewJobRunner(imageProcessor, storageService, logger, cfg.Storage.MaxFileSize)
	queueService, err := queue.NewQueueService(cfg.RabbitMQ, runner, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
	} else if err := queueService.StartWorkers(workerCtx, cfg.RabbitMQ.Workers); err != nil {
		logger.Error("Failed to start workers", zap.Error(err))
		queueService.Close()
		queueService = nil
	} else {
		jobQueue = queueService
	}

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(imageProcessor, storageService, photoService, jobQueue, logger, cfg)

	router := routes.NewRouter(imageHandler, middleware.NewMetrics(), cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("storage_backend", cfg.Storage.Backend))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if queueService != nil {
		stopWorkers()
		queueService.Wait()
		if err := queueService.Close(); err != nil {
			logger.Error("Failed to close queue", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
