package middleware

import (
	"net/http"                   // HTTP status codes
	"shop_system/internal/utils" // JWT and cache utility functions
	"strings"                    // String manipulation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client for the token denylist
)

// JWTAuthMiddleware validates JWT tokens, rejects tokens revoked by logout,
// and extracts user information into the request context
func JWTAuthMiddleware(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// Reject tokens that were revoked through GET /logout
		denied, err := utils.IsTokenDenied(c.Request.Context(), rdb, claims.ID)
		if err == nil && denied {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			return
		}
		c.Set("userID", claims.UserID) // Store userID in context
		c.Set("claims", claims)        // Store full claims for logout
		c.Next()                       // Proceed to the next handler
	}
}
