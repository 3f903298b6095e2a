package api

import (
	"errors"                       // Sentinel error comparison
	"fmt"                          // Callback URL formatting
	"net/http"                     // HTTP status codes
	"shop_system/internal/domain"  // Importing domain models
	"shop_system/internal/payment" // Payment provider client

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // External references
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// loadOwnedOrder fetches an order by path param and enforces ownership.
// It writes the error response itself and returns nil when the caller
// should stop.
func loadOwnedOrder(c *gin.Context, db *gorm.DB, userID uint) *domain.Order {
	var order domain.Order // Fetch order from database
	if err := db.Preload("Items.Product").First(&order, c.Param("orderId")).Error; err != nil {
		// If order not found, return not found
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil
	}
	// Only the owner may act on an order
	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil
	}
	return &order
}

// CreatePreferenceHandler starts an external payment: it builds the line item
// manifest, registers a preference with the provider, and hands back the
// checkout URL the browser should be sent to
func CreatePreferenceHandler(db *gorm.DB, client *payment.Client, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order := loadOwnedOrder(c, db, userID.(uint)) // Fetch and authorize the order
		if order == nil {
			return
		}
		// An empty order has nothing to pay for
		if len(order.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order is empty"})
			return
		}
		// A missing credential aborts before any network traffic
		if client.AccessToken == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment provider access token missing"})
			return
		}
		// Store a fresh external reference so the success callback can be
		// matched against this exact preference
		externalRef := uuid.NewString()
		if err := db.Model(order).Update("external_ref", externalRef).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare payment"})
			return
		}
		// Provider redirects land on the callback routes for this order
		backURLs := payment.BackURLs{
			Success: fmt.Sprintf("%s/mp/success/%d", publicBaseURL, order.ID), // Payment approved
			Failure: fmt.Sprintf("%s/mp/failure/%d", publicBaseURL, order.ID), // Payment rejected
			Pending: fmt.Sprintf("%s/mp/pending/%d", publicBaseURL, order.ID), // Payment processing
		}
		items := payment.ManifestFromOrder(order) // Line item manifest
		// Create the payment session with the provider
		pref, err := client.CreatePreference(c.Request.Context(), items, backURLs, externalRef)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,      // User ID
				"order_id": order.ID,    // Order ID
				"error":    err.Error(), // Error message
			}).Error("Preference creation failed") // Log provider failure
			// Missing credential is a configuration problem, not a provider one
			if errors.Is(err, payment.ErrMissingToken) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			// Surface the provider's response to the caller
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		// Log the created session
		logrus.WithFields(logrus.Fields{
			"user_id":       userID,   // User ID
			"order_id":      order.ID, // Order ID
			"preference_id": pref.ID,  // Provider preference ID
		}).Info("Payment preference created") // Log preference creation
		// Return the checkout URL for the browser redirect
		c.JSON(http.StatusOK, gin.H{
			"preference_id": pref.ID,        // Provider preference ID
			"init_point":    pref.InitPoint, // Checkout URL
		})
	}
}

// MPSuccessHandler handles the provider's success callback. The order is
// marked paid only when the session user owns it and the callback's
// external_reference matches the one stored when the preference was created;
// anything else renders the result without mutating state.
func MPSuccessHandler(db *gorm.DB) gin.HandlerFunc {
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
		ref := c.Query("external_reference") // Reference echoed back by the provider
		// Ownership and reference must both match before the order is paid
		if order.UserID == userID.(uint) && ref != "" && ref == order.ExternalRef {
			if err := markOrderPaid(db, &order); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark order as paid"})
				return
			}
			// Log successful payment
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,        // User ID
				"order_id": order.ID,      // Order ID
				"method":   "mercadopago", // Payment method
			}).Info("Order paid") // Log payment
		} else {
			// Silently no-op on mismatch, but leave a trace for operators
			logrus.WithFields(logrus.Fields{
				"session_user_id": userID,       // Authenticated user
				"order_user_id":   order.UserID, // Order owner
				"order_id":        order.ID,     // Order ID
			}).Warn("Success callback ignored: owner or reference mismatch")
		}
		// Render the payment result either way
		c.JSON(http.StatusOK, gin.H{
			"order":  order,         // Order as it now stands
			"method": "mercadopago", // Payment method
			"result": "success",     // Provider-reported outcome
		})
	}
}

// MPFailureHandler renders the provider's failure callback; the order stays
// pending and remains payable
func MPFailureHandler(db *gorm.DB) gin.HandlerFunc {
	return paymentResultHandler(db, "failure")
}

// MPPendingHandler renders the provider's pending callback; the order stays
// pending and remains payable
func MPPendingHandler(db *gorm.DB) gin.HandlerFunc {
	return paymentResultHandler(db, "pending")
}

// paymentResultHandler renders a callback outcome without changing any state
func paymentResultHandler(db *gorm.DB, result string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authentication is still required for callback pages
		if _, exists := c.Get("userID"); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var order domain.Order // Fetch order from database
		if err := db.Preload("Items.Product").First(&order, c.Param("orderId")).Error; err != nil {
			// If order not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		// Render the payment result; no state change
		c.JSON(http.StatusOK, gin.H{
			"order":  order,         // Order, still pending
			"method": "mercadopago", // Payment method
			"result": result,        // Provider-reported outcome
		})
	}
}
