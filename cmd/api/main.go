package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"io.winapps.heartline/internal/compose"
	"io.winapps.heartline/internal/db"
	"io.winapps.heartline/internal/dispatch"
	"io.winapps.heartline/internal/expo"
	firebaseutil "io.winapps.heartline/internal/firebase"
	"io.winapps.heartline/internal/handlers"
	"io.winapps.heartline/internal/middleware"
	"io.winapps.heartline/internal/store"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	// Initialize Firebase
	firebaseApp, err := firebaseutil.InitFirebase()
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis()
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	// Stores
	schedules := store.NewSchedules(postgresDB)
	tokens := store.NewTokens(postgresDB, redisClient)
	profiles := store.NewProfiles(postgresDB, redisClient)
	deliveryLogs := store.NewDeliveryLogs(postgresDB)

	// Message composer: AI when an API key is configured, static otherwise
	var composer compose.Composer
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && os.Getenv("COMPOSER_MODE") != "static" {
		composer = compose.NewAIComposer(apiKey, os.Getenv("OPENAI_MODEL"), os.Getenv("OPENAI_COMPLETIONS_URL"))
		logger.Infow("using AI message composer")
	} else {
		composer = compose.StaticComposer{}
		logger.Infow("using static message composer")
	}

	pushClient := expo.NewClient(os.Getenv("EXPO_PUSH_URL"))
	lease := dispatch.NewRedisLease(redisClient)
	pipeline := dispatch.New(schedules, tokens, profiles, deliveryLogs, pushClient, composer, lease, logger)

	// Initialize Gin router
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware for mobile app
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Dispatch-Secret")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	notificationsHandler := handlers.NewNotificationsHandler(
		pipeline, tokens, profiles, schedules, deliveryLogs,
		os.Getenv("DISPATCH_SECRET"), logger,
	)

	// Define routes
	v1 := router.Group("/api/v1")
	{
		notifications := v1.Group("/notifications")
		{
			// Trigger endpoint authenticates via shared secret, not a user token
			notifications.POST("/dispatch", notificationsHandler.Dispatch)

			authed := notifications.Group("")
			authed.Use(middleware.AuthMiddleware(firebaseApp, postgresDB, redisClient))
			{
				authed.POST("/register-token", notificationsHandler.RegisterPushToken)
				authed.POST("/update-profile", notificationsHandler.UpdateProfile)
				authed.POST("/update-schedule", notificationsHandler.UpdateSchedule)
				authed.POST("/stats", notificationsHandler.GetNotificationStats)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Scheduled dispatch runs, same pipeline the HTTP trigger uses
	cronManager := cron.New(cron.WithLocation(time.UTC))
	cronSpec := getEnvOrDefault("DISPATCH_CRON", "*/5 * * * *")
	if _, err := cronManager.AddFunc(cronSpec, func() {
		summary, err := pipeline.Run(context.Background())
		if errors.Is(err, dispatch.ErrRunInProgress) {
			logger.Infow("skipping scheduled dispatch, previous run still in progress")
			return
		}
		if err != nil {
			logger.Errorw("scheduled dispatch failed", "error", err)
			return
		}
		logger.Infow("scheduled dispatch finished", "due", summary.Due)
	}); err != nil {
		log.Fatalf("Failed to schedule dispatch cron %q: %v", cronSpec, err)
	}
	cronManager.Start()
	defer cronManager.Stop()

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + getEnvOrDefault("PORT", "9092"),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infow("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("shutting down server")

	// Give a 5 second timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Infow("server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
