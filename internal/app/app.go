package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tablonHTTP "tablon/internal/controller/http"
	"tablon/internal/repo/persistent"
	"tablon/internal/storage"
	"tablon/internal/usecase"
	"tablon/pkg/cache"
	"tablon/pkg/config"
	"tablon/pkg/jwt"
	"tablon/pkg/logger"
	"tablon/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "tablon/docs" // Swagger docs
)

const listCacheTTL = 5 * time.Minute

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)
	store := storage.NewStore(cfg.AssetDir)

	// Initialize repositories
	postRepo := persistent.NewPostRepository(db)
	assetRepo := persistent.NewAssetRepository(db)
	categoryRepo := persistent.NewCategoryRepository(db)

	// Initialize use cases
	assetUseCase := usecase.NewAssetUseCase(assetRepo, store, log)
	listCache := cache.New(redisClient, listCacheTTL)
	postUseCase := usecase.NewPostUseCase(postRepo, categoryRepo, assetUseCase, store, listCache, log)
	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo)

	// Initialize HTTP handlers
	postHandler := tablonHTTP.NewPostHandler(postUseCase, log)
	assetHandler := tablonHTTP.NewAssetHandler(assetUseCase, log)
	categoryHandler := tablonHTTP.NewCategoryHandler(categoryUseCase, log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Stored assets are served straight from disk
	r.Static("/uploads", cfg.AssetDir)

	api := r.Group("/api/v1")

	// Public reads; an optional token lets moderators see non-approved listings
	public := api.Group("")
	public.Use(middleware.OptionalAuthMiddleware(jwtService))
	{
		public.GET("/posts", postHandler.ListPosts)
		public.GET("/posts/latest", postHandler.GetLatestPosts)
		public.GET("/posts/pinned", postHandler.GetPinnedPosts)
		public.GET("/posts/user/:user_id", postHandler.GetUserPosts)
		public.GET("/posts/category/:category_id", postHandler.GetCategoryPosts)
		public.GET("/posts/:id", postHandler.GetPost)
		public.GET("/posts/:id/cover", assetHandler.GetPostCover)
		public.GET("/posts/:id/assets", assetHandler.GetPostAssets)
		public.GET("/categories", categoryHandler.ListCategories)
		public.GET("/categories/:id", categoryHandler.GetCategory)
	}

	// Writes require authentication
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMinute, time.Minute))
	{
		protected.POST("/posts", postHandler.CreatePost)
		protected.PUT("/posts/:id", postHandler.UpdatePost)
		protected.DELETE("/posts/:id", postHandler.DeletePost)
		protected.POST("/posts/:id/assets", postHandler.AddPostAssets)
		protected.PATCH("/posts/:id/status", postHandler.UpdatePostStatus)
		protected.PATCH("/posts/:id/pin", postHandler.TogglePin)
		protected.DELETE("/assets/:id", assetHandler.DeleteAsset)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Tablon starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down tablon...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Tablon exited")
}
