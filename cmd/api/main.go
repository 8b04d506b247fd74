package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/config"
	"github.com/shukatsu-compass/backend/internal/database"
	"github.com/shukatsu-compass/backend/internal/handlers"
	"github.com/shukatsu-compass/backend/internal/middleware"
	"github.com/shukatsu-compass/backend/internal/services"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}
	cfg := config.Load()

	// 2. Database Connection
	db := database.Connect(cfg.PostgresDSN)

	// 3. Initialize Core Services
	tokens := auth.NewTokenProvider(cfg.JWTSecret, cfg.AccessTokenTTL)
	userService := services.NewUserService(db, tokens)
	companyService := services.NewCompanyService(db)
	applicationService := services.NewApplicationService(db)
	deadlineService := services.NewDeadlineService(db)
	taskService := services.NewTaskService(db)
	entrySheetService := services.NewEntrySheetService(db)
	reviewService := services.NewReviewService(db, entrySheetService, cfg.GeminiAPIKey, cfg.GeminiModel)
	extractService := services.NewExtractService(db, companyService, reviewService.Client)
	billingService := services.NewBillingService(db, cfg.StripeSecretKey, cfg.StripeWebhookSecret,
		cfg.StripePriceID, cfg.BillingSuccessURL, cfg.BillingCancelURL)

	// 4. Initialize Google Calendar Integration
	log.Println("Initializing Calendar Client...")
	var calendarClient *calendar.Service
	if httpClient := auth.GetCalendarClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile); httpClient != nil {
		var err error
		calendarClient, err = calendar.NewService(context.Background(), option.WithHTTPClient(httpClient))
		if err != nil {
			log.Printf("⚠️  Failed to create Calendar Service: %v", err)
		} else {
			log.Println("✅ Calendar Service connected successfully.")
		}
	}

	// 5. Start the Calendar Sync Watcher
	// The service handles a nil client gracefully (sync stays off)
	calendarService := services.NewCalendarService(db, calendarClient, cfg.CalendarSyncInterval, cfg.CalendarSyncHorizon)
	calendarService.StartWatcher()

	// 6. Initialize Handlers
	authHandler := handlers.NewAuthHandler(userService)
	companyHandler := handlers.NewCompanyHandler(companyService, applicationService)
	deadlineHandler := handlers.NewDeadlineHandler(deadlineService, extractService)
	taskHandler := handlers.NewTaskHandler(taskService)
	entrySheetHandler := handlers.NewEntrySheetHandler(entrySheetService, reviewService)
	billingHandler := handlers.NewBillingHandler(billingService)

	// 7. Setup Router, CORS & Rate Limiting
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // For development only
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Device-Token"}
	r.Use(cors.New(corsConfig))

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		limiter = middleware.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Println("✅ Redis rate limiter enabled.")
	} else {
		limiter = middleware.NewRateLimiter()
	}
	r.Use(middleware.RateLimit(limiter, cfg.RateLimitPerMin, time.Minute))

	// 8. Define Routes
	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/guest", authHandler.Guest)

		// Called by the payment provider, signature-verified instead
		api.POST("/billing/webhook", billingHandler.Webhook)

		authed := api.Group("")
		authed.Use(middleware.Identify(tokens, userService))
		{
			authed.GET("/companies", companyHandler.List)
			authed.POST("/companies", companyHandler.Create)
			authed.GET("/companies/:id", companyHandler.Get)
			authed.PATCH("/companies/:id", companyHandler.Update)
			authed.DELETE("/companies/:id", companyHandler.Delete)
			authed.GET("/companies/:id/applications", companyHandler.ListApplications)
			authed.POST("/companies/:id/applications", companyHandler.CreateApplication)
			authed.PATCH("/applications/:applicationId", companyHandler.UpdateApplication)
			authed.DELETE("/applications/:applicationId", companyHandler.DeleteApplication)

			authed.GET("/deadlines", deadlineHandler.List)
			authed.POST("/deadlines", deadlineHandler.Create)
			authed.POST("/deadlines/extract", deadlineHandler.Extract)
			authed.GET("/deadlines/:id", deadlineHandler.Get)
			authed.PATCH("/deadlines/:id", deadlineHandler.Update)
			authed.DELETE("/deadlines/:id", deadlineHandler.Delete)

			authed.GET("/tasks", taskHandler.List)
			authed.POST("/tasks", taskHandler.Create)
			authed.PATCH("/tasks/:id", taskHandler.Update)
			authed.POST("/tasks/reorder", taskHandler.Reorder)

			authed.GET("/companies/:id/entry-sheets", entrySheetHandler.List)
			authed.POST("/entry-sheets", entrySheetHandler.Create)
			authed.GET("/entry-sheets/:id", entrySheetHandler.Get)
			authed.PATCH("/entry-sheets/:id", entrySheetHandler.Update)
			authed.DELETE("/entry-sheets/:id", entrySheetHandler.Delete)
			authed.POST("/entry-sheets/:id/review", entrySheetHandler.Review)

			authed.POST("/billing/checkout", billingHandler.Checkout)
		}
	}

	log.Printf("🚀 Server starting on port %s...", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
