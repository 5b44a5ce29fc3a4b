package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/eventix/internal/di"
	"github.com/prohmpiriya/eventix/internal/domain"
	"github.com/prohmpiriya/eventix/internal/handler"
	"github.com/prohmpiriya/eventix/internal/metrics"
	"github.com/prohmpiriya/eventix/internal/notifier"
	"github.com/prohmpiriya/eventix/internal/repository"
	"github.com/prohmpiriya/eventix/internal/service"
	"github.com/prohmpiriya/eventix/migrations"
	"github.com/prohmpiriya/eventix/pkg/config"
	"github.com/prohmpiriya/eventix/pkg/database"
	"github.com/prohmpiriya/eventix/pkg/logger"
	"github.com/prohmpiriya/eventix/pkg/middleware"
	pkgredis "github.com/prohmpiriya/eventix/pkg/redis"
	"github.com/prohmpiriya/eventix/pkg/response"
	"github.com/prohmpiriya/eventix/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logLevel := cfg.App.LogLevel
	if logLevel == "" {
		logLevel = cfg.App.Environment
	}
	if err := logger.Init(&logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting eventix booking core", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Telemetry disabled", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	healthChecks := make(map[string]handler.HealthChecker)

	// Storage: Postgres when reachable, otherwise in-memory
	var (
		eventRepo   repository.EventRepository
		bookingRepo repository.BookingRepository
		reviewRepo  repository.ReviewRepository
	)
	dbCfg := database.FromConfig(&cfg.Database, cfg.OTel.Enabled)
	dbCfg.OnRetry = func(attempt int, err error, next time.Duration) {
		appLog.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	switch {
	case err == nil:
		defer db.Close()
		applied, err := migrations.Apply(ctx, db.Pool())
		if err != nil {
			appLog.Fatal("Failed to apply migrations", zap.Error(err))
		}
		appLog.Info("Database connected", zap.Strings("migrations_applied", applied))

		eventRepo = repository.NewPostgresEventRepository(db.Pool())
		bookingRepo = repository.NewPostgresBookingRepository(db.Pool())
		reviewRepo = repository.NewPostgresReviewRepository(db.Pool())
		healthChecks["database"] = db
	case cfg.Database.Required:
		appLog.Fatal("Database connection failed", zap.Error(err))
	default:
		appLog.Warn("Database unavailable, using in-memory repositories", zap.Error(err))
	}

	// Redis: seat locks and idempotency keys
	var (
		seatLocker  repository.SeatLocker
		idempotency gin.HandlerFunc
	)
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, pkgredis.FromConfig(&cfg.Redis))
		if err != nil {
			appLog.Warn("Redis unavailable, seat uniqueness relies on storage", zap.Error(err))
		} else {
			defer redisClient.Close()
			locker := repository.NewRedisSeatLocker(redisClient)
			if err := locker.LoadScripts(ctx); err != nil {
				appLog.Warn("Failed to pre-load Lua scripts", zap.Error(err))
			}
			seatLocker = locker

			idemCfg := middleware.DefaultIdempotencyConfig(redisClient)
			idemCfg.Optional = true
			idempotency = middleware.IdempotencyMiddleware(idemCfg)
			healthChecks["redis"] = redisClient
			appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Notifier sinks
	sinks := []notifier.Sink{notifier.NewLogSink(appLog)}
	if cfg.Kafka.Enabled {
		kafkaSink, err := notifier.NewKafkaSink(ctx, &notifier.KafkaSinkConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ClientID:    cfg.Kafka.ClientID,
			ServiceName: cfg.App.Name,
		})
		if err != nil {
			appLog.Warn("Kafka sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, kafkaSink)
			healthChecks["kafka"] = kafkaSink
			appLog.Info("Kafka sink connected", zap.String("topic", cfg.Kafka.Topic))
		}
	}
	if cfg.PubNub.Enabled {
		pubnubSink, err := notifier.NewPubNubSink(&notifier.PubNubSinkConfig{
			PublishKey:     cfg.PubNub.PublishKey,
			SubscribeKey:   cfg.PubNub.SubscribeKey,
			UserID:         cfg.PubNub.UserID,
			Channel:        cfg.PubNub.Channel,
			PublishTimeout: cfg.Notifier.PublishTimeout,
		})
		if err != nil {
			appLog.Warn("PubNub sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, pubnubSink)
		}
	}
	dispatcher := notifier.NewDispatcher(&notifier.Config{
		BufferSize:     cfg.Notifier.BufferSize,
		Workers:        cfg.Notifier.Workers,
		PublishTimeout: cfg.Notifier.PublishTimeout,
	}, appLog, m, sinks...)

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		EventRepo:    eventRepo,
		BookingRepo:  bookingRepo,
		ReviewRepo:   reviewRepo,
		SeatLocker:   seatLocker,
		Notifier:     dispatcher,
		Metrics:      m,
		Logger:       appLog,
		HealthChecks: healthChecks,
		EventConfig: &service.EventServiceConfig{
			DefaultStatus: domain.EventStatus(cfg.Booking.EventDefaultStatus),
		},
		BookingConfig: &service.BookingServiceConfig{
			SeatLockTTL: cfg.Booking.SeatLockTTL,
		},
		ReviewConfig: &service.ReviewServiceConfig{
			RatingRange: domain.RatingRange{Min: cfg.Booking.ReviewMinRating, Max: cfg.Booking.ReviewMaxRating},
		},
		Eligibility: domain.ReviewEligibility(cfg.Booking.ReviewEligibility),
	})

	// Setup Gin
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(telemetry.TracingMiddleware(&telemetry.HTTPConfig{
		ServiceName: cfg.OTel.ServiceName,
		SkipPaths:   []string{"/health", "/ready", cfg.Metrics.Path},
		ContextAttributes: map[string]string{
			middleware.ContextKeyRequestID: "http.request_id",
			middleware.ContextKeyUserID:    "enduser.id",
			middleware.ContextKeyRole:      "enduser.role",
			response.ContextKeyErrorCode:   "eventix.error_code",
		},
	}))
	router.Use(middleware.Logger(appLog))

	routes := container.Routes()
	routes.Auth = middleware.Auth(&middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	})
	routes.Idempotency = idempotency
	if cfg.Metrics.Enabled {
		routes.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
		routes.MetricsPath = cfg.Metrics.Path
	}
	routes.Register(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"X-Request-ID", telemetry.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           600,
	}).Handler(router)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           corsHandler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}
	// Drain pending notifications after the last request has finished
	if err := dispatcher.Close(shutdownCtx); err != nil {
		appLog.Warn("Notifier did not drain", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
