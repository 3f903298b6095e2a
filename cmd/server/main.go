package main

import (
	"log"                             // log package is needed for logging
	"shop_system/internal/api"        // Custom package for API handlers
	"shop_system/internal/config"     // Custom package for configuration
	"shop_system/internal/middleware" // Custom package for middleware
	"shop_system/internal/payment"    // Payment provider client

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Payment provider client; an empty token disables external payment
	mpClient := payment.NewClient(cfg.MPAccessToken, cfg.MPAPIURL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public routes
	r.GET("/", api.IndexHandler(db, redisClient))         // Public catalog listing
	r.POST("/register", api.RegisterHandler(db))          // Registration endpoint
	r.POST("/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Authenticated routes (protected by JWT with logout denylist)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, redisClient))
	auth.GET("/logout", api.LogoutHandler(redisClient)) // Logout endpoint

	// Product catalog CRUD
	auth.GET("/products", api.ListProductsHandler(db))                          // List products endpoint
	auth.POST("/product/new", api.CreateProductHandler(db, redisClient))        // Create product endpoint
	auth.POST("/product/edit/:id", api.EditProductHandler(db, redisClient))     // Update product endpoint
	auth.POST("/product/delete/:id", api.DeleteProductHandler(db, redisClient)) // Delete product endpoint

	// Cart routes
	auth.POST("/add_to_cart/:productId", api.AddToCartHandler(db))        // Add/increment line item endpoint
	auth.POST("/remove_from_cart/:itemId", api.RemoveFromCartHandler(db)) // Delete line item endpoint
	auth.GET("/cart", api.GetCartHandler(db))                             // View cart endpoint

	// Order and payment routes
	auth.GET("/order/checkout", api.CheckoutHandler(db))                                                            // Order summary endpoint
	auth.POST("/order/pay_local/:orderId", api.PayLocalHandler(db))                                                 // Local payment endpoint
	auth.POST("/order/mp_create_preference/:orderId", api.CreatePreferenceHandler(db, mpClient, cfg.PublicBaseURL)) // Start external payment
	auth.GET("/mp/success/:orderId", api.MPSuccessHandler(db))                                                      // Provider success callback
	auth.GET("/mp/failure/:orderId", api.MPFailureHandler(db))                                                      // Provider failure callback
	auth.GET("/mp/pending/:orderId", api.MPPendingHandler(db))                                                      // Provider pending callback

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
