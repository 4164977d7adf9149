// Package main is the entry point for the residential community server.
// It provides a REST API for residents, guards, service providers and
// admins: complaints, gate passes, bookings, broadcasts, polls, guard
// tasks and SOS alerts.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/auth"
	"github.com/societyhub/community-server/internal/config"
	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/handlers"
	"github.com/societyhub/community-server/internal/middleware"
	"github.com/societyhub/community-server/internal/services"
	"github.com/societyhub/community-server/internal/uploads"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("Starting community server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"redis", cfg.RedisURL != "",
		"upload_bucket", cfg.UploadBucket,
	)

	// Initialize database connection pool
	db, err := database.NewPool(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			sugar.Fatalf("Failed to migrate schema: %v", err)
		}
	}

	// Redis backs token revocation and rate limiting when configured
	var (
		revocations auth.RevocationStore
		limiter     middleware.Limiter
		cacheCheck  handlers.Checker
	)
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			sugar.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		revocations = auth.NewRedisRevocationStore(rdb)
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitRPM)
		cacheCheck = func(ctx context.Context) error { return pingRedis(ctx, rdb) }
	} else {
		sugar.Warn("REDIS_URL not set, using in-process revocation and rate limiting")
		revocations = auth.NewMemoryRevocationStore()
		limiter = middleware.NewMemoryLimiter(cfg.RateLimitRPM)
	}

	// Image storage
	var (
		store     uploads.Store
		uploadDir string
	)
	if cfg.UploadBucket != "" {
		gcs, err := uploads.NewGCSStore(context.Background(), cfg.UploadBucket, cfg.GCSCredentials)
		if err != nil {
			sugar.Fatalf("Failed to open upload bucket: %v", err)
		}
		defer gcs.Close()
		store = gcs
	} else {
		local, err := uploads.NewLocalStore(cfg.UploadDir)
		if err != nil {
			sugar.Fatalf("Failed to prepare upload dir: %v", err)
		}
		store = local
		uploadDir = local.Dir()
	}
	form := handlers.NewImageForm(store, cfg.MaxUploadBytes)

	// Initialize services
	userSvc := services.NewUserService(db, sugar)
	complaintSvc := services.NewComplaintService(db, sugar)
	gatePassSvc := services.NewGatePassService(db, sugar)
	bookingSvc := services.NewBookingService(db, userSvc, sugar)
	broadcastSvc := services.NewBroadcastService(db, sugar)
	pollSvc := services.NewPollService(db, sugar)
	taskSvc := services.NewTaskService(db, userSvc, sugar)
	sosSvc := services.NewSOSService(db, sugar)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Build router
	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         logger,
		Issuer:         issuer,
		Revocations:    revocations,
		Limiter:        limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      uploadDir,

		Health:     handlers.NewHealthHandler(db.Ping, cacheCheck, sugar),
		Auth:       handlers.NewAuthHandler(userSvc, issuer, revocations, sugar),
		Users:      handlers.NewUserHandler(userSvc, sugar),
		Complaints: handlers.NewComplaintHandler(complaintSvc, form, sugar),
		GatePasses: handlers.NewGatePassHandler(gatePassSvc, sugar),
		Bookings:   handlers.NewBookingHandler(bookingSvc, userSvc, sugar),
		Broadcasts: handlers.NewBroadcastHandler(broadcastSvc, form, sugar),
		Polls:      handlers.NewPollHandler(pollSvc, sugar),
		Tasks:      handlers.NewTaskHandler(taskSvc, sugar),
		SOS:        handlers.NewSOSHandler(sosSvc, sugar),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}
