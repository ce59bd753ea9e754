package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/joseguilhermeromano/Pastel360/cache"
	"github.com/joseguilhermeromano/Pastel360/consumer"
	"github.com/joseguilhermeromano/Pastel360/controllers"
	"github.com/joseguilhermeromano/Pastel360/database"
	"github.com/joseguilhermeromano/Pastel360/logger"
	"github.com/joseguilhermeromano/Pastel360/middleware"
	"github.com/joseguilhermeromano/Pastel360/notification"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"github.com/joseguilhermeromano/Pastel360/routes"
	"github.com/joseguilhermeromano/Pastel360/sender"
	"github.com/joseguilhermeromano/Pastel360/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const serviceName = "pastel360-api"

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Initialize(getEnv("APP_ENV", "development"))

	cfg, err := LoadConfig(ctx)
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}

	awsCfg, err := awspkg.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		log.Fatal("Failed to load AWS config", zap.Error(err))
	}

	if cfg.CloudWatchLog {
		w, err := awspkg.NewCloudWatchLogsWriter(ctx, awsCfg, cfg.LogGroup, serviceName)
		if err != nil {
			log.Warn("CloudWatch Logs writer init failed (non-fatal)", zap.Error(err))
		} else {
			log = logger.InitializeWithWriter(cfg.Env, w)
		}
	}
	defer func() { _ = log.Sync() }()

	// Database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Database close error", zap.Error(err))
		}
	}()
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	metricsClient := awspkg.NewMetricsClient(awsCfg, "Pastel360", cfg.MetricsOn)

	// Dependency injection
	orderRepo := repository.NewGormOrderRepository(db)
	customerRepo := repository.NewGormCustomerRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var emailSender sender.EmailSender
	if cfg.SMTP.Host != "" {
		smtpSender, err := sender.NewSMTPSender(cfg.SMTP)
		if err != nil {
			log.Fatal("Failed to init SMTP sender", zap.Error(err))
		}
		emailSender = smtpSender
	}

	notificationService, err := services.NewNotificationService(notificationRepo, emailSender, services.NotificationConfig{
		AppURL:      cfg.AppURL,
		MaxAttempts: cfg.MailAttempts,
		Backoff:     cfg.MailBackoff,
	}, metricsClient, log)
	if err != nil {
		log.Fatal("Failed to initialize notification service", zap.Error(err))
	}

	orderService := services.NewOrderService(orderRepo, customerRepo, productRepo,
		buildDispatcher(cfg, awsCfg, log), metricsClient, log)
	customerService := services.NewCustomerService(customerRepo, log)
	productService := services.NewProductService(productRepo, buildPhotoStore(cfg, awsCfg, log),
		buildProductCache(ctx, cfg, log), metricsClient, log)

	// Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), max(cfg.RatePerMinute/2, 1), 5*time.Minute)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(limiter))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	routes.RegisterRoutes(r, routes.Controllers{
		Orders:        controllers.NewOrderController(orderService),
		Customers:     controllers.NewCustomerController(customerService),
		Products:      controllers.NewProductController(productService),
		Notifications: controllers.NewNotificationController(notificationService, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Pastel360 API started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		limiter.Cleanup(gctx)
		return nil
	})

	// Notification worker
	switch {
	case !cfg.WorkerEnabled:
		log.Info("Notification worker disabled")
	case cfg.SQSQueueURL == "" || emailSender == nil:
		log.Warn("Notification worker not started: SQS_QUEUE_URL and SMTP_HOST are required")
	default:
		sqsConsumer := consumer.NewSQSConsumer(awspkg.NewSQSQueue(awsCfg, cfg.SQSQueueURL), notificationService, log)
		g.Go(func() error { return sqsConsumer.Start(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Pastel360 API stopped gracefully")
}

// buildDispatcher prefers SNS fan-out, then a direct SQS queue.
func buildDispatcher(cfg *Config, awsCfg sdkaws.Config, log *zap.Logger) notification.Dispatcher {
	switch {
	case cfg.SNSTopicArn != "":
		log.Info("Order notifications via SNS", zap.String("topic", cfg.SNSTopicArn))
		return notification.NewQueueDispatcher(
			notification.NewSNSPublisher(awspkg.NewSNSClient(awsCfg), cfg.SNSTopicArn), log)
	case cfg.SQSQueueURL != "":
		log.Info("Order notifications via SQS", zap.String("queue", cfg.SQSQueueURL))
		return notification.NewQueueDispatcher(
			notification.NewSQSPublisher(awspkg.NewSQSQueue(awsCfg, cfg.SQSQueueURL)), log)
	}
	log.Warn("No notification queue configured, order emails are disabled")
	return notification.Disabled{Logger: log}
}

func buildPhotoStore(cfg *Config, awsCfg sdkaws.Config, log *zap.Logger) services.PhotoStore {
	if cfg.S3Bucket == "" {
		log.Warn("S3_BUCKET not set, product photo uploads are disabled")
		return nil
	}
	return awspkg.NewS3Storage(awspkg.NewS3Client(awsCfg), cfg.S3Bucket)
}

func buildProductCache(ctx context.Context, cfg *Config, log *zap.Logger) cache.ProductCache {
	if cfg.RedisURL == "" {
		return cache.Noop{}
	}
	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Warn("Product cache disabled", zap.Error(err))
		return cache.Noop{}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable at startup, cache degrades to misses", zap.Error(err))
	}
	return cache.NewRedisProductCache(client, cache.DefaultTTL, log)
}
