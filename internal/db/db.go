package db

import (
	"budget_tracker/internal/config" // Application configuration
	"fmt"                            // Error wrapping
	"time"                           // Slow query threshold

	"github.com/glebarez/sqlite"     // Pure Go SQLite driver for GORM
	"github.com/sirupsen/logrus"     // Logrus for structured logging
	"gorm.io/driver/mysql"           // MySQL driver for GORM
	"gorm.io/gorm"                   // GORM ORM library
	gormlogger "gorm.io/gorm/logger" // GORM logger interface
)

// Open connects to the database selected by cfg.DBDriver
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		// busy_timeout lets concurrent writers wait instead of failing immediately
		dialector = sqlite.Open(cfg.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	default:
		dialector = mysql.Open(cfg.MySQLDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY churn
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
