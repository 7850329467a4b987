package main

import (
	"budget_tracker/internal/api"     // Custom package for API handlers
	"budget_tracker/internal/config"  // Custom package for configuration
	"budget_tracker/internal/db"      // Database connection and migrations
	"budget_tracker/internal/ledger"  // Balance ledger core
	"budget_tracker/internal/logging" // Logger setup
	"context"                         // Shutdown and Redis operations
	"errors"                          // Server close detection
	"fmt"                             // Error wrapping
	"net/http"                        // HTTP server
	"os"                              // Signals
	"os/signal"                       // Signal handling
	"syscall"                         // SIGTERM
	"time"                            // Timeouts

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact decimal arithmetic
	"github.com/sirupsen/logrus"    // Logrus for structured logging
	"golang.org/x/sync/errgroup"    // Server lifecycle
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Application logs go to stdout, request lines to the rotated access log
	log := logging.New(logging.Options{Level: cfg.LogLevel, IsProd: cfg.IsProd})
	accessLog := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, IsProd: cfg.IsProd})

	if err := run(cfg, log, accessLog); err != nil {
		log.Fatalf("%v", err)
	}
	log.Info("Server stopped")
}

// run wires the server and blocks until it shuts down
func run(cfg *config.Config, log, accessLog *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Balances go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Connect to the database and make sure the schema exists
	gdb, err := db.Open(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	opts := []ledger.Option{
		ledger.WithLogger(log),
		ledger.WithMaxAttempts(cfg.LedgerRetries),
	}

	// Setup Redis client when configured
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()

		// Test Redis connection
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		opts = append(opts, ledger.WithCache(ledger.NewRedisCache(redisClient, cfg.CacheTTL)))
	} else {
		log.Warn("REDIS_ADDR not set, running without cache")
	}

	svc := ledger.NewService(ledger.NewGormStore(gdb), opts...)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(api.RouterConfig{
		Ledger: svc,
		Session: api.SessionConfig{
			Secret: cfg.JWTSecret,
			TTL:    cfg.TokenTTL,
			Secure: cfg.IsProd,
		},
		Log:            log,
		AccessLog:      accessLog,
		CORSOrigin:     cfg.CORSOrigin,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server running on port " + cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
