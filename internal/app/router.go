package app

import (
	"context"
	"log"
	"time"

	"mixshare/internal/config"
	"mixshare/internal/db"
	"mixshare/internal/middleware"
	"mixshare/internal/repository"
	"mixshare/internal/service"
	"mixshare/internal/util"
	"mixshare/internal/websocket"

	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	verboseErrors = !cfg.IsProduction()

	registerValidators()

	r := gin.Default()

	r.Use(corsMiddleware(cfg.ClientURL))

	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	store, err := db.Connect(cfg)
	if err != nil {
		panic("Failed to connect to MongoDB: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		panic("Failed to ensure indexes: " + err.Error())
	}

	redisClient := initRedisWithRetry(cfg)
	rabbitMQ := initRabbitMQWithRetry(cfg)

	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("WebSocket hub started")

	var cloudinaryClient *util.CloudinaryClient
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cloudinaryClient, err = util.NewCloudinaryClient(cfg)
		if err != nil {
			log.Printf("Warning: failed to initialize Cloudinary: %v. Image uploads will be disabled.", err)
		} else {
			log.Println("Cloudinary initialized successfully")
		}
	} else {
		log.Println("Cloudinary credentials not configured. Image uploads will be disabled.")
	}

	// Repositories
	userRepo := repository.NewUserRepository(store)
	cocktailRepo := repository.NewCocktailRepository(store, userRepo, redisClient)
	followRepo := repository.NewFollowRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, rabbitMQ)
	authService := service.NewAuthService(userRepo, redisClient, cfg)
	cocktailService := service.NewCocktailService(cocktailRepo, userRepo, cloudinaryClient, cfg)
	engagementService := service.NewEngagementService(cocktailRepo, userRepo, notificationService)
	followService := service.NewFollowService(followRepo, userRepo, notificationService)
	userService := service.NewUserService(userRepo, cocktailRepo, followRepo, cloudinaryClient)
	adminService := service.NewAdminService(cocktailRepo, userRepo, notificationService)

	if rabbitMQ != nil {
		worker := service.NewNotificationWorker(rabbitMQ, wsHub)
		if err := worker.Start(); err != nil {
			log.Printf("Warning: failed to start notification worker: %v", err)
		} else {
			log.Println("Notification worker started successfully")
		}
	} else {
		log.Println("Notification worker not started - RabbitMQ unavailable. Stored notifications still work.")
	}

	// Handlers
	authHandler := NewAuthHandler(authService)
	cocktailHandler := NewCocktailHandler(cocktailService)
	engagementHandler := NewEngagementHandler(engagementService)
	userHandler := NewUserHandler(userService, followService)
	notificationHandler := NewNotificationHandler(notificationService)
	adminHandler := NewAdminHandler(adminService)

	requireAuth := middleware.AuthMiddleware(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JWTSecret)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		cocktails := api.Group("/cocktails")
		{
			// Public routes. More specific routes come before /:id.
			cocktails.GET("", cocktailHandler.List)
			cocktails.GET("/mine", requireAuth, cocktailHandler.Mine)
			cocktails.GET("/:id", optionalAuth, cocktailHandler.Get)

			// Protected routes
			cocktails.POST("", requireAuth, cocktailHandler.Create)
			cocktails.PUT("/:id", requireAuth, cocktailHandler.Update)
			cocktails.DELETE("/:id", requireAuth, cocktailHandler.Delete)
			cocktails.POST("/:id/like", requireAuth, engagementHandler.Like)
			cocktails.POST("/:id/rate", requireAuth, engagementHandler.Rate)
			cocktails.POST("/:id/comments", requireAuth, engagementHandler.Comment)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.Search)
			users.PUT("/me", requireAuth, userHandler.UpdateProfile)
			users.PUT("/me/avatar", requireAuth, userHandler.UpdateAvatar)
			users.GET("/:username", optionalAuth, userHandler.Profile)
			users.POST("/:username/follow", requireAuth, userHandler.Follow)
			users.GET("/:username/followers", userHandler.Followers)
			users.GET("/:username/following", userHandler.Following)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread/count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, middleware.AdminMiddleware())
		{
			admin.GET("/cocktails/pending", adminHandler.PendingCocktails)
			admin.PUT("/cocktails/:id/approval", adminHandler.SetApproval)
			// Rejection removes the submission and its hosted image
			admin.DELETE("/cocktails/:id", cocktailHandler.Delete)
			admin.PUT("/cocktails/:id/featured", adminHandler.SetFeatured)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/ban", adminHandler.SetBanned)
			admin.GET("/stats", adminHandler.Stats)
		}
	}

	r.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(wsHub, cfg.JWTSecret).ServeHTTP(c.Writer, c.Request)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if clientURL == "" || origin == clientURL {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// initRedisWithRetry connects to Redis with exponential backoff. The
// application runs without caching if Redis never comes up.
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			log.Printf("Redis connected successfully on attempt %d", attempt)
			return redisClient
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}
			log.Printf("Failed to connect to Redis (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: failed to connect to Redis after %d attempts: %v. Caching disabled.", maxRetries, err)
		}
	}

	return nil
}

// initRabbitMQWithRetry connects to RabbitMQ with exponential backoff.
// Without it, notifications are stored but not pushed in real time.
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg)
		if err == nil {
			log.Printf("RabbitMQ connected successfully on attempt %d", attempt)
			return rabbitMQ
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}
			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: failed to connect to RabbitMQ after %d attempts: %v. Real-time delivery disabled.", maxRetries, err)
		}
	}

	return nil
}
