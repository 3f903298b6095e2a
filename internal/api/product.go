package api

import (
	"net/http"                    // HTTP status codes
	"shop_system/internal/domain" // Importing domain models
	"shop_system/internal/utils"  // Utility functions
	"time"                        // Cache TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache key for the public catalog listing
const catalogCacheKey = "catalog:all"

// ProductRequest is the typed input for creating and editing products
type ProductRequest struct {
	Name        string   `json:"name" binding:"required"`        // Product name must be provided
	Description string   `json:"description"`                    // Optional description
	Price       *float64 `json:"price" binding:"required,gte=0"` // Price must be provided and >= 0
}

// IndexHandler lists the catalog for anonymous visitors, cache-aside via Redis
func IndexHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()                                         // Request-scoped context
		var products []domain.Product                                      // Catalog entries
		found, err := utils.GetCache(ctx, rdb, catalogCacheKey, &products) // Try the cache first
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"products": products, "cached": true})
			return
		}
		// Otherwise load from the database
		if err := db.Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
			return
		}
		_ = utils.SetCache(ctx, rdb, catalogCacheKey, products, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"products": products, "cached": false})
	}
}

// ListProductsHandler lists the catalog for authenticated users
func ListProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []domain.Product // Catalog entries
		if err := db.Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// CreateProductHandler creates a catalog entry
func CreateProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		product := domain.Product{Name: req.Name, Description: req.Description, Price: *req.Price}
		// Attempt to create the product in the database
		if err := db.Create(&product).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"name":  req.Name,    // Product name
				"error": err.Error(), // Error message
			}).Error("Failed to create product") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		// Invalidate the catalog cache
		_ = utils.DeleteCache(c.Request.Context(), rdb, catalogCacheKey)
		// Return the created product
		c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
	}
}

// EditProductHandler updates a catalog entry
func EditProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product domain.Product // Fetch product from database
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			// If product not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		var req ProductRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		product.Name = req.Name               // Update name
		product.Description = req.Description // Update description
		product.Price = *req.Price            // Update price
		// Persist the changes
		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		// Invalidate the catalog cache
		_ = utils.DeleteCache(c.Request.Context(), rdb, catalogCacheKey)
		// Return the updated product
		c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
	}
}

// DeleteProductHandler removes a catalog entry
func DeleteProductHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product domain.Product // Fetch product from database
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			// If product not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		// Delete the product
		if err := db.Delete(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		// Invalidate the catalog cache
		_ = utils.DeleteCache(c.Request.Context(), rdb, catalogCacheKey)
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
