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

	"github.com/gin-gonic/gin"

	"github.com/KrishnaSriTarun/wanderlust/internal/handler"
	"github.com/KrishnaSriTarun/wanderlust/internal/repository"
	"github.com/KrishnaSriTarun/wanderlust/internal/service"
	"github.com/KrishnaSriTarun/wanderlust/pkg/config"
	"github.com/KrishnaSriTarun/wanderlust/pkg/database"
	"github.com/KrishnaSriTarun/wanderlust/pkg/logger"
	"github.com/KrishnaSriTarun/wanderlust/pkg/middleware"
	pkgredis "github.com/KrishnaSriTarun/wanderlust/pkg/redis"
	"github.com/KrishnaSriTarun/wanderlust/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting reservation service...")

	ctx := context.Background()

	// Initialize tracing
	tel, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	if tel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx); err != nil {
				appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
			}
		}()
	}

	// Initialize the reservation store
	var (
		db           *database.PostgresDB
		reservations repository.ReservationRepository
		listings     repository.ListingRepository
	)
	switch cfg.Booking.Store {
	case "memory":
		appLog.Info("Using in-memory reservation store")
		reservations = repository.NewMemoryReservationRepository()
		listings = repository.NewMemoryListingRepository()
	default:
		dbCfg := &database.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MinConns:        int32(cfg.Database.MaxIdleConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			MaxRetries:      3,
			RetryInterval:   2 * time.Second,
			EnableTracing:   cfg.OTel.Enabled,
		}
		db, err = database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
		}
		defer db.Close()
		appLog.Info("Database connected")

		reservations = repository.NewPostgresReservationRepository(db.Pool())
		listings = repository.NewPostgresListingRepository(db.Pool())
	}

	// Initialize Redis and wrap the listing repository with a cache
	var redis *pkgredis.Client
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	}
	redis, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, listing cache disabled: %v", err))
		redis = nil
	} else {
		defer redis.Close()
		appLog.Info("Redis connected")
		listings = repository.NewRedisListingCache(listings, redis, &repository.RedisListingCacheConfig{
			TTL: cfg.Redis.ListingTTL,
		})
	}

	// Initialize the event publisher
	var publisher service.EventPublisher
	publisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, events disabled: %v", err))
		publisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka producer connected")
	}
	defer publisher.Close()

	// Build services and handlers
	checker := service.NewConflictChecker(reservations)
	bookingService := service.NewBookingService(reservations, listings, checker, publisher)
	bookingHandler := handler.NewBookingHandler(bookingService)
	healthHandler := handler.NewHealthHandler(db, redis)

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Availability is public
		v1.GET("/listings/:id/availability", bookingHandler.CheckAvailability)

		// Booking and reservation routes require authentication
		authed := v1.Group("")
		authed.Use(middleware.Auth(cfg.JWT.Secret))
		{
			authed.POST("/listings/:id/book", bookingHandler.Book)
			authed.GET("/reservations", bookingHandler.ListReservations)
			authed.GET("/reservations/:id", bookingHandler.GetReservation)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Reservation service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
