// middleware/jwt_auth.go
package middleware

import (
	"net/http"
	"strings"

	"courtpilot/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware guards API endpoints with a bearer token minted by the
// auth endpoint. The subject claim names the calling client and is stored in
// the context for request logs.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// Validate the token signature and expiration.
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		subject, err := utils.ExtractSubjectFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("apiClient", subject)
		c.Next()
	}
}
