package api

import (
	"errors"                      // Sentinel error comparison
	"net/http"                    // HTTP status codes
	"shop_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CheckoutHandler shows the order summary for the user's active cart
func CheckoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order, err := findActiveOrder(db, userID.(uint)) // Resolve the cart without creating one
		// Checkout requires a cart with at least one item
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(order.Items) == 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		// Return the order summary and its total
		c.JSON(http.StatusOK, gin.H{"order": order, "total": order.Total()})
	}
}

// markOrderPaid transitions an order to paid and frees the active-cart slot so
// the user's next add-to-cart starts a fresh order. Re-marking a paid order is
// a no-op update, not an error.
func markOrderPaid(db *gorm.DB, order *domain.Order) error {
	return db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":         domain.OrderStatusPaid, // pending -> paid
			"active_user_id": nil,                    // Release the one-pending-order slot
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}
		order.Status = domain.OrderStatusPaid // Keep the in-memory copy in sync
		order.ActiveUserID = nil
		return nil
	})
}

// PayLocalHandler marks an order as paid through the local simulated method
func PayLocalHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var order domain.Order // Fetch order from database
		if err := db.Preload("Items.Product").First(&order, c.Param("orderId")).Error; err != nil {
			// If order not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		// Only the owner may pay for an order
		if order.UserID != userID.(uint) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		// Mark the order as paid
		if err := markOrderPaid(db, &order); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,      // User ID
				"order_id": order.ID,    // Order ID
				"error":    err.Error(), // Error message
			}).Error("Local payment failed") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark order as paid"})
			return
		}
		// Log successful payment
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,        // User ID
			"order_id": order.ID,      // Order ID
			"total":    order.Total(), // Order total
			"method":   "local",       // Payment method
		}).Info("Order paid") // Log payment
		// Return the payment result
		c.JSON(http.StatusOK, gin.H{
			"message": "Order marked as paid", // Result message
			"order":   order,                  // Paid order
			"method":  "local",                // Payment method
			"result":  "success",              // Payment outcome
		})
	}
}
