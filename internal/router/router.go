package router

import (
	"github.com/gin-gonic/gin"
	"github.com/velocraft/velocraft-backend/config"
	"github.com/velocraft/velocraft-backend/internal/app/controller"
	"github.com/velocraft/velocraft-backend/internal/middleware"
)

type Router struct {
	productController *controller.ProductController
	orderController   *controller.OrderController
	config            *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	orderController *controller.OrderController,
	cfg *config.Config,
) *Router {
	return &Router{
		productController: productController,
		orderController:   orderController,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "VELOCRAFT API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/:id/options", r.orderController.AddOption)
			orders.DELETE("/:id/options/:part_id", r.orderController.RemoveOption)
			orders.POST("/:id/finalize", r.orderController.FinalizeOrder)
		}

		ws := v1.Group("/ws")
		{
			ws.GET("/orders/:id", r.orderController.StreamOrder)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
