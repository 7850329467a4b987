package api

import (
	"budget_tracker/internal/ledger"     // Ledger core
	"budget_tracker/internal/middleware" // Session cookie name
	"budget_tracker/internal/utils"      // Token issuing
	"net/http"                           // HTTP status codes
	"time"                               // Token lifetime

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionConfig controls how session tokens are issued
type SessionConfig struct {
	Secret string        // HMAC secret for tokens
	TTL    time.Duration // Token and cookie lifetime
	Secure bool          // Only send the cookie over HTTPS
}

// LoginRequest is the body of POST /api/user/login
type LoginRequest struct {
	Name  string `json:"name" binding:"required,notblank,max=100"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// LoginHandler finds or creates the user by email and starts a cookie session
func LoginHandler(svc *ledger.Service, session SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": validationErrors(err)})
			return
		}

		user, err := svc.Login(c.Request.Context(), req.Name, req.Email)
		if err != nil {
			respondError(c, err, msgUserNotFound)
			return
		}

		token, err := utils.GenerateJWT(user.ID, session.Secret, session.TTL)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
			return
		}

		setSessionCookie(c, token, int(session.TTL.Seconds()), session.Secure)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// LogoutHandler clears the session cookie
func LogoutHandler(session SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		setSessionCookie(c, "", -1, session.Secure)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// MeHandler returns the caller's profile and current balance
func MeHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		user, err := svc.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err, msgUserNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func setSessionCookie(c *gin.Context, value string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, value, maxAge, "/", "", secure, true)
}
