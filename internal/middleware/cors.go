package middleware

import (
	"time" // Preflight cache lifetime

	"github.com/gin-contrib/cors" // CORS handling for gin
	"github.com/gin-gonic/gin"    // Gin web framework
)

// CORS allows credentialed requests from a single frontend origin.
// An empty origin disables cross-origin access entirely.
func CORS(allowedOrigin string) gin.HandlerFunc {
	if allowedOrigin == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:     []string{allowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
