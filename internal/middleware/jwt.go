package middleware

import (
	"budget_tracker/internal/utils" // JWT utility functions
	"net/http"                      // HTTP status codes
	"strings"                       // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	// TokenCookie is the cookie that carries the session token
	TokenCookie = "token"
	// userIDKey is where the authenticated user ID is stored in the gin context
	userIDKey = "userID"
)

// JWTAuthMiddleware validates the session token and stores the caller's user ID.
// The token is read from the "token" cookie, falling back to an Authorization bearer header.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: No token provided"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			// A token was presented but is not acceptable
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid token"})
			return
		}
		c.Set(userIDKey, claims.UserID) // Store userID in context
		c.Next()
	}
}

// UserID returns the authenticated user ID set by JWTAuthMiddleware
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
