package api

import (
	"errors"                      // Sentinel error comparison
	"net/http"                    // HTTP status codes
	"shop_system/internal/domain" // Importing domain models
	"strconv"                     // Form field conversion

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// findActiveOrder returns the user's pending order with items preloaded, or
// gorm.ErrRecordNotFound when the user has no cart.
func findActiveOrder(db *gorm.DB, userID uint) (*domain.Order, error) {
	var order domain.Order
	err := db.Preload("Items.Product").
		Where("user_id = ? AND status = ?", userID, domain.OrderStatusPending).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// getOrCreateActiveOrder resolves the user's pending order, creating an empty
// one if none exists. The create runs inside a transaction and the unique
// active-user index guarantees two racing requests cannot both insert a cart;
// the loser of the race re-reads the winner's order.
func getOrCreateActiveOrder(db *gorm.DB, userID uint) (*domain.Order, error) {
	order, err := findActiveOrder(db, userID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := domain.Order{UserID: userID, Status: domain.OrderStatusPending, ActiveUserID: &userID}
	txErr := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&created).Error
	})
	if txErr != nil {
		// Lost the race: another request created the pending order first
		return findActiveOrder(db, userID)
	}
	return &created, nil
}

// AddToCartHandler adds a product to the user's cart, incrementing the
// quantity when a line item for the product already exists
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var product domain.Product // Fetch product from database
		if err := db.First(&product, c.Param("productId")).Error; err != nil {
			// If product not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		// Quantity arrives as a form field and defaults to 1
		quantity, err := strconv.Atoi(c.DefaultPostForm("quantity", "1"))
		if err != nil || quantity < 1 {
			// Non-positive or non-numeric quantity is rejected
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
			return
		}
		// Resolve the user's cart, creating one on first add
		order, err := getOrCreateActiveOrder(db, userID.(uint))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to resolve cart") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}
		// Find-or-increment the line item inside a transaction
		err = db.Transaction(func(tx *gorm.DB) error {
			var item domain.OrderItem
			err := tx.Where("order_id = ? AND product_id = ?", order.ID, product.ID).First(&item).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// First time this product is added: insert a new line item
				item = domain.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: quantity}
				return tx.Create(&item).Error
			} else if err != nil {
				return err
			}
			// Product already in the cart: increment the quantity
			return tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // User ID
				"order_id":   order.ID,    // Order ID
				"product_id": product.ID,  // Product ID
				"quantity":   quantity,    // Requested quantity
				"error":      err.Error(), // Error message
			}).Error("Add to cart failed") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
			return
		}
		// Log successful add
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,     // User ID
			"order_id":   order.ID,   // Order ID
			"product_id": product.ID, // Product ID
			"quantity":   quantity,   // Requested quantity
		}).Info("Added to cart") // Log add to cart
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Added to cart", "order_id": order.ID})
	}
}

// RemoveFromCartHandler deletes a line item from the user's cart
func RemoveFromCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// The user must have an active cart to remove from
		if _, err := findActiveOrder(db, userID.(uint)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No active cart"})
			return
		}
		var item domain.OrderItem // Fetch the line item
		if err := db.First(&item, c.Param("itemId")).Error; err != nil {
			// If item not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		var order domain.Order // Fetch the item's order for the ownership check
		if err := db.First(&order, item.OrderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		// Reject attempts to modify another user's cart
		if order.UserID != userID.(uint) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot modify another user's cart"})
			return
		}
		// Delete the line item
		if err := db.Delete(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
			return
		}
		// Log successful removal
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,       // User ID
			"order_id": item.OrderID, // Order ID
			"item_id":  item.ID,      // Item ID
		}).Info("Removed from cart") // Log removal
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
	}
}

// GetCartHandler returns the user's active cart with line items and total
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order, err := findActiveOrder(db, userID.(uint)) // Resolve the cart without creating one
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An empty cart is a normal state, not an error
			c.JSON(http.StatusOK, gin.H{"order": nil, "total": 0.0})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		// Return the cart and its total
		c.JSON(http.StatusOK, gin.H{"order": order, "total": order.Total()})
	}
}
