package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/velocraft/velocraft-backend/config"
	"github.com/velocraft/velocraft-backend/internal/app/controller"
	"github.com/velocraft/velocraft-backend/internal/app/repository"
	"github.com/velocraft/velocraft-backend/internal/app/service"
	"github.com/velocraft/velocraft-backend/internal/db"
	"github.com/velocraft/velocraft-backend/internal/router"
	"github.com/velocraft/velocraft-backend/internal/scheduler"
	"github.com/velocraft/velocraft-backend/internal/websocket"
	"github.com/velocraft/velocraft-backend/pkg/logger"
	"github.com/velocraft/velocraft-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting VELOCRAFT Backend Server", map[string]interface{}{
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

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize redis (optional catalog cache)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, catalog caching disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close redis connection", err)
				}
			}()
		}
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize websocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, cfg.Catalog.CacheTTL)
	productService := service.NewProductService(catalogRepo)
	configuratorService := service.NewConfiguratorService(catalogService, orderRepo, hub)

	// Start the idle session sweeper
	sweeper := scheduler.NewSessionSweeper(configuratorService, cfg.Session.SweepSchedule, cfg.Session.IdleTTL)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start session sweeper", err)
	}
	defer sweeper.Stop()

	// Initialize controllers
	productController := controller.NewProductController(productService)
	orderController := controller.NewOrderController(configuratorService, hub)

	// Setup router
	r := router.NewRouter(
		productController,
		orderController,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
