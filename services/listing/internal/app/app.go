package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradelink/pkg/cache"
	"tradelink/pkg/config"
	"tradelink/pkg/database"
	"tradelink/pkg/jwt"
	"tradelink/pkg/llm"
	"tradelink/pkg/logger"
	"tradelink/pkg/middleware"
	listingHTTP "tradelink/services/listing/internal/controller/http"
	"tradelink/services/listing/internal/repo/persistent"
	"tradelink/services/listing/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v (caching disabled)", err)
		redisClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwt.NewService(cfg.JWTSecret),
	}, nil
}

func (a *App) Run() error {
	listingRepo := persistent.NewListingRepository(a.db)
	unlockRepo := persistent.NewUnlockRepository(a.db)
	announcementRepo := persistent.NewAnnouncementRepository(a.db)
	llmClient := llm.NewClient(a.cfg)

	listingUseCase := usecase.NewListingUseCase(
		listingRepo, unlockRepo, announcementRepo, llmClient, a.redisClient, a.log,
	)
	listingHandler := listingHTTP.NewListingHandler(listingUseCase)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		api.GET("/listings", listingHandler.Feed)
		api.GET("/listings/:id", listingHandler.GetListing)
		api.GET("/announcements", listingHandler.Announcements)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(a.jwtService))
		if a.redisClient != nil {
			protected.Use(middleware.RateLimitMiddleware(a.redisClient, 60, time.Minute))
		}
		protected.POST("/listings", listingHandler.Publish)
		protected.POST("/listings/batch", listingHandler.PublishBatch)
		protected.POST("/listings/batch-parse", listingHandler.BatchParse)
		protected.PATCH("/listings/:id/status", listingHandler.SetStatus)
		protected.POST("/listings/:id/unlock", listingHandler.Unlock)
		protected.POST("/unlocks/:id/confirm-deal", listingHandler.ConfirmDeal)
		protected.GET("/my/listings", listingHandler.MyListings)
		protected.GET("/my/unlocks", listingHandler.MyUnlocks)
	}

	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	go func() {
		a.log.Info("Listing service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down listing service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	a.log.Info("Listing service exited")
	return nil
}
