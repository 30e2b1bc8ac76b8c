package middleware

import (
	"net/http"

	"github.com/SuperB747/emotion-notepad-sub000/services"
	"github.com/SuperB747/emotion-notepad-sub000/utils/token"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware authenticates websocket upgrade requests, where
// the token arrives as a query parameter rather than a header.
func WebSocketAuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}
