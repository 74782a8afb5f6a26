package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/teashop-backend/config"
	"github.com/ikkim/teashop-backend/internal/app/controller"
	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/db"
	"github.com/ikkim/teashop-backend/internal/export"
	"github.com/ikkim/teashop-backend/internal/middleware"
	"github.com/ikkim/teashop-backend/internal/router"
	"github.com/ikkim/teashop-backend/internal/scheduler"
	"github.com/ikkim/teashop-backend/internal/storage"
	ws "github.com/ikkim/teashop-backend/internal/websocket"
	"github.com/ikkim/teashop-backend/pkg/logger"
	"github.com/ikkim/teashop-backend/pkg/payment/razorpay"
	"github.com/ikkim/teashop-backend/pkg/redis"
	"github.com/ikkim/teashop-backend/pkg/util"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "console"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	if cfg.IsProduction() {
		logFormat = "json"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: !cfg.IsProduction(),
	})

	logger.Info("Starting Tea Shop Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(&cfg.Seed); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Token blacklist lives in redis; without it logout cannot revoke tokens.
	var (
		revoker service.TokenRevoker
		checker middleware.RevocationChecker
	)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		blacklist := redis.NewTokenBlacklist(redis.GetClient())
		revoker = blacklist
		checker = blacklist
	} else {
		logger.Warn("Redis disabled, logged out tokens stay valid until expiry")
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", err)
	}

	gateway, err := razorpay.NewClient(razorpay.Config{
		KeyID:     cfg.Payment.Razorpay.KeyID,
		KeySecret: cfg.Payment.Razorpay.KeySecret,
		BaseURL:   cfg.Payment.Razorpay.BaseURL,
		Currency:  cfg.Payment.Razorpay.Currency,
		Timeout:   cfg.Payment.Razorpay.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to initialize Razorpay client", err)
	}

	mailer := util.NewSMTPMailer(util.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if mailer.DevMode() {
		logger.Warn("SMTP host not set, outgoing mail is only logged")
	}

	hub := ws.NewHub()
	go hub.Run()

	database := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	productRepo := repository.NewProductRepository(database)
	cartRepo := repository.NewCartRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	reviewRepo := repository.NewReviewRepository(database)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(database, productRepo, blobs)
	cartService := service.NewCartService(database, cartRepo, productRepo)
	notificationService := service.NewNotificationService(mailer, cfg.Mail.ContactRecipient)
	orderService := service.NewOrderService(
		database,
		orderRepo,
		cartService,
		notificationService,
		hub,
		export.NewExcelOrderExporter(),
	)
	paymentService := service.NewPaymentService(gateway, orderService, gateway.Currency())
	reviewService := service.NewReviewService(database, reviewRepo, productRepo)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, checker)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		defer rateLimiter.Close()
	}

	r := router.NewRouter(
		router.Controllers{
			Auth:      controller.NewAuthController(authService),
			User:      controller.NewUserController(userService),
			Product:   controller.NewProductController(productService),
			Cart:      controller.NewCartController(cartService),
			Order:     controller.NewOrderController(orderService),
			Payment:   controller.NewPaymentController(paymentService, cfg.Payment.Razorpay.KeyID),
			Review:    controller.NewReviewController(reviewService),
			Contact:   controller.NewContactController(notificationService),
			WebSocket: controller.NewWebSocketController(hub, cfg.CORS.AllowedOrigins),
		},
		authMiddleware,
		rateLimiter,
		cfg,
	)
	engine := r.Setup()

	var reports *scheduler.OrderReportScheduler
	if cfg.Scheduler.Enabled {
		reports = scheduler.NewOrderReportScheduler(cfg.Scheduler.ReportCron, orderService, blobs)
		if err := reports.Start(); err != nil {
			logger.Error("Failed to start order report scheduler", err)
			reports = nil
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	if reports != nil {
		reports.Stop()
	}
	hub.Stop()

	logger.Info("Server stopped successfully")
}

// newBlobStore prefers S3 and falls back to the local upload directory.
func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	if cfg.S3.Bucket != "" {
		logger.Info("Using S3 blob storage", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
			"region": cfg.S3.Region,
		})
		return storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		), nil
	}

	logger.Info("Using local blob storage", map[string]interface{}{
		"dir": cfg.Storage.LocalDir,
	})
	return storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
}
