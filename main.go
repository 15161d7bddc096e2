package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"funeral-backend/config"
	"funeral-backend/controllers"
	"funeral-backend/routes"
	"funeral-backend/services"
)

func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !envFound {
		logger.Info(".env not found; continuing with environment variables")
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	logger.Info("database connection established", zap.Bool("auto_migrate", cfg.AutoMigrate))

	var locker services.ResourceLocker
	redisClient, err := config.NewRedisClient(cfg)
	switch {
	case err != nil:
		logger.Fatal("redis connect failed", zap.Error(err))
	case redisClient != nil:
		defer redisClient.Close()
		locker = services.NewRedisResourceLocker(redisClient, logger, cfg.ResourceLockTTL, cfg.ResourceLockWait)
		logger.Info("using redis resource locks")
	default:
		locker = services.NewLocalResourceLocker(cfg.ResourceLockWait)
		logger.Info("using in-process resource locks")
	}

	// Initialize services
	resourceSvc := services.NewResourceAvailabilityService(db, logger)
	inventorySvc := services.NewInventoryAvailabilityService(db, logger, services.NewTTLReservationPolicy(services.DefaultReservationTTL))
	validator := services.NewBookingValidator(db, logger, resourceSvc, inventorySvc)
	confirmation := services.NewInventoryConfirmationService(logger)
	bookingSvc := services.NewBookingService(db, logger, validator, confirmation, locker)
	bookingSvc.RestockOnCancel = cfg.RestockOnCancel

	// Initialize controllers
	availabilityController := controllers.NewAvailabilityController(resourceSvc, inventorySvc)
	bookingController := controllers.NewBookingController(bookingSvc, validator)

	router := routes.SetupRouter(logger, cfg.CORSOrigins, availabilityController, bookingController)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}
