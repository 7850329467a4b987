package db

import (
	"budget_tracker/internal/domain" // Importing domain models
	"fmt"                            // Error wrapping

	"gorm.io/gorm" // GORM ORM library
)

// Migrate creates or updates the users and transactions tables
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Transaction{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
