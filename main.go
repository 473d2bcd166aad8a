package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitalog/backend/internal/assistant"
	"github.com/vitalog/backend/internal/audit"
	"github.com/vitalog/backend/internal/config"
	"github.com/vitalog/backend/internal/gateway"
	"github.com/vitalog/backend/internal/handler"
	"github.com/vitalog/backend/internal/kvstore"
	"github.com/vitalog/backend/internal/middleware"
	"github.com/vitalog/backend/internal/provider"
	"github.com/vitalog/backend/internal/repository"
	"github.com/vitalog/backend/internal/security"
	"github.com/vitalog/backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database connection pool with pgx
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Initialize the key-value store for session state and check-ins
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to ping redis", zap.Error(err))
	}
	logger.Info("Successfully connected to redis")

	var encryptor *security.Encryptor
	if cfg.Security.TranscriptKey != "" {
		encryptor, err = security.NewEncryptor([]byte(cfg.Security.TranscriptKey))
		if err != nil {
			logger.Fatal("Failed to initialize transcript encryption", zap.Error(err))
		}
	} else {
		logger.Warn("Transcript encryption disabled, set TRANSCRIPT_ENCRYPTION_KEY in production")
	}
	store := kvstore.NewStore(rdb, encryptor, logger)

	// Initialize outbound clients
	assistantClient, err := assistant.NewClient(cfg.Assistant.APIKey, cfg.Assistant.Model, logger)
	if err != nil {
		logger.Fatal("Failed to initialize assistant client", zap.Error(err))
	}

	gatewayClient := gateway.NewClient(
		cfg.Payment.BaseURL,
		cfg.Payment.APIKey,
		cfg.Payment.Timeout,
		logger,
	)

	var providerClient service.ProviderAPI
	if cfg.Provider.BaseURL != "" {
		providerClient = provider.NewClient(
			cfg.Provider.BaseURL,
			cfg.Provider.APIKey,
			cfg.Provider.Timeout,
			logger,
		)
	}

	// Initialize repositories
	healthLogRepo := repository.NewHealthLogRepository(pool, logger)
	chatRepo := repository.NewChatRepository(pool, logger)
	ratingRepo := repository.NewRatingRepository(pool, logger)
	reminderRepo := repository.NewReminderRepository(pool, logger)
	trainerRepo := repository.NewTrainerRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)

	auditLogger := audit.NewLogger(pool, logger)

	// The timezone was validated at config load
	checkInLocation, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		logger.Fatal("Failed to load check-in timezone", zap.Error(err))
	}

	// Initialize services
	healthLogService := service.NewHealthLogService(healthLogRepo, providerClient, auditLogger, logger)
	chatService := service.NewChatService(chatRepo, store, assistantClient, auditLogger, logger)
	checkInService := service.NewCheckInService(store, checkInLocation, logger)
	ratingService := service.NewRatingService(ratingRepo, auditLogger, logger)
	reminderService := service.NewReminderService(reminderRepo, auditLogger, logger)
	trainerService := service.NewTrainerService(trainerRepo, auditLogger, logger)
	paymentService := service.NewPaymentService(paymentRepo, gatewayClient, auditLogger, logger)

	// Initialize handlers
	healthLogHandler := handler.NewHealthLogHandler(healthLogService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	checkInHandler := handler.NewCheckInHandler(checkInService, logger)
	ratingHandler := handler.NewRatingHandler(ratingService, logger)
	reminderHandler := handler.NewReminderHandler(reminderService, logger)
	trainerHandler := handler.NewTrainerHandler(trainerService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Recovery middleware must be first
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Configure appropriately for production
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}
		if err := store.Ping(ctx); err != nil {
			logger.Error("health check failed: redis unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"redis":  "disconnected",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "vitalog-backend",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/api/v1")
	{
		logs := v1.Group("/health-logs")
		{
			logs.POST("", healthLogHandler.CreateHealthLog)
			logs.GET("", healthLogHandler.ListHealthLogs)
			logs.GET("/statistics", healthLogHandler.GetStatistics)
			logs.GET("/export", healthLogHandler.ExportHealthLogs)
			logs.GET("/heart-rate-status", healthLogHandler.GetHeartRateStatus)
			logs.POST("/sync", healthLogHandler.SyncProviderLogs)
			logs.GET("/:id", healthLogHandler.GetHealthLog)
			logs.PUT("/:id", healthLogHandler.UpdateHealthLog)
			logs.DELETE("/:id", healthLogHandler.DeleteHealthLog)
		}

		chat := v1.Group("/consultation")
		{
			chat.GET("/session", chatHandler.GetSession)
			chat.POST("/messages", chatHandler.SendMessage)
			chat.DELETE("/session", chatHandler.DeleteSession)
		}

		checkin := v1.Group("/checkin")
		{
			checkin.GET("/status", checkInHandler.GetStatus)
			checkin.POST("", checkInHandler.PostCheckIn)
		}

		reminders := v1.Group("/reminders")
		{
			reminders.POST("", reminderHandler.CreateReminder)
			reminders.GET("", reminderHandler.ListReminders)
			reminders.PUT("/:id", reminderHandler.UpdateReminder)
			reminders.PATCH("/:id/active", reminderHandler.ToggleReminder)
			reminders.DELETE("/:id", reminderHandler.DeleteReminder)
		}

		v1.POST("/ratings", ratingHandler.SubmitRating)

		trainers := v1.Group("/trainer-applications")
		{
			trainers.POST("", trainerHandler.Apply)
			trainers.GET("", trainerHandler.ListApplications)
			trainers.POST("/:id/review", trainerHandler.Review)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.InitiatePayment)
			payments.GET("/:id", paymentHandler.GetPayment)
		}
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}
