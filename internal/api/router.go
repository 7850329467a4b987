package api

import (
	"budget_tracker/internal/ledger"     // Ledger core
	"budget_tracker/internal/middleware" // Custom middleware
	"net/http"                           // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RouterConfig carries everything the HTTP layer needs
type RouterConfig struct {
	Ledger         *ledger.Service
	Session        SessionConfig
	Log            *logrus.Logger // Application log, also receives recovered panics
	AccessLog      *logrus.Logger // One line per request, defaults to Log
	CORSOrigin     string
	TrustedProxies []string
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	RegisterValidators()

	accessLog := cfg.AccessLog
	if accessLog == nil {
		accessLog = cfg.Log
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(
		gin.RecoveryWithWriter(cfg.Log.WriterLevel(logrus.ErrorLevel)),
		middleware.RequestID(),
		middleware.AccessLogger(accessLog),
		middleware.CORS(cfg.CORSOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "RodCo Budget API is running...")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	svc := cfg.Ledger
	user := r.Group("/api/user")

	// Session routes
	user.POST("/login", LoginHandler(svc, cfg.Session))
	user.POST("/logout", LogoutHandler(cfg.Session))

	// Ledger routes (protected by the session token)
	authed := user.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.Session.Secret))
	authed.GET("/me", MeHandler(svc))
	authed.GET("/transactions", ListTransactionsHandler(svc, ledger.RecentLimit))
	authed.GET("/all/transactions", ListTransactionsHandler(svc, 0))
	authed.POST("/transactions", CreateTransactionHandler(svc))
	authed.DELETE("/transactions/:transactionId", DeleteTransactionHandler(svc))
	authed.POST("/reset", ResetHandler(svc))
	authed.GET("/ledger/check", LedgerCheckHandler(svc))

	return r, nil
}
