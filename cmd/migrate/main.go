package main

import (
	"budget_tracker/internal/config"  // Custom import path (Config)
	"budget_tracker/internal/db"      // Custom import path (Database)
	"budget_tracker/internal/logging" // Custom import path (Logging)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	log := logging.New(logging.Options{Level: cfg.LogLevel, IsProd: cfg.IsProd})

	gdb, err := db.Open(cfg, log)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("%v", err)
	}
	log.WithField("driver", cfg.DBDriver).Info("Migration completed.")
}
