package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/config"
	"github.com/hermione06/cafeteria-management-system/handlers"
	"github.com/hermione06/cafeteria-management-system/logger"
	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/repositories"
	"github.com/hermione06/cafeteria-management-system/routes"
	"github.com/hermione06/cafeteria-management-system/services"
	"github.com/hermione06/cafeteria-management-system/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	gin.SetMode(cfg.Server.Mode)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	if err := config.Seed(db, cfg, log); err != nil {
		log.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	store := repositories.NewStore(db)
	menuService := services.NewMenuService(store, log)
	orderService := services.NewOrderService(store, log)
	mailer := utils.NewSMTPMailer(cfg, log)

	var uploader *utils.S3Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = utils.NewS3Uploader(context.Background(), cfg.S3.Bucket, cfg.S3.Region)
		if err != nil {
			log.Warn("image uploads disabled", "error", err)
			uploader = nil
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Cafeteria Management API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍽️ Welcome to the Cafeteria Management API",
			"health":  "/health",
			"roles":   []string{"user", "staff", "admin"},
		})
	})

	routes.SetupRoutes(r, routes.Handlers{
		Auth:          handlers.NewAuthHandler(store, cfg, mailer, log),
		Menu:          handlers.NewMenuHandler(menuService, uploader, log),
		Orders:        handlers.NewOrderHandler(orderService, log),
		Users:         handlers.NewUserHandler(store, log),
		Announcements: handlers.NewAnnouncementHandler(store, log),
	}, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server stopped")
}
