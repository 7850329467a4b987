package config

import (
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // Origin checks
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	DBDriver      string        // "mysql" or "sqlite"
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name
	SQLitePath    string        // SQLite database file when DBDriver is "sqlite"
	JWTSecret     string        // JWT secret key
	TokenTTL      time.Duration // Session token lifetime
	RedisAddr     string        // Redis server address, empty disables the cache
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	CacheTTL      time.Duration // Lifetime of cached reads
	CORSOrigin    string        // Frontend origin allowed to send credentials
	LogLevel      string        // logrus level name
	LogFile       string        // Rotated access log file, empty disables file output
	LedgerRetries int           // Attempts for a conflicting balance write
	IsProd        bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:       getEnv("APP_PORT", "5000"),
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getEnv("DB_HOST", "127.0.0.1"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBName:        getEnv("DB_NAME", "budget"),
		SQLitePath:    getEnv("SQLITE_PATH", "budget.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getDuration("TOKEN_TTL", 7*24*time.Hour),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       getInt("REDIS_DB", 0),
		CacheTTL:      getDuration("CACHE_TTL", 60*time.Second),
		CORSOrigin:    os.Getenv("CORS_ORIGIN"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", "logs/access.log"),
		LedgerRetries: getInt("LEDGER_MAX_ATTEMPTS", 3),
		IsProd:        os.Getenv("IS_PROD") == "true",
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.CORSOrigin != "" && !strings.HasPrefix(c.CORSOrigin, "http://") && !strings.HasPrefix(c.CORSOrigin, "https://") {
		return fmt.Errorf("CORS_ORIGIN must start with http:// or https://, got %q", c.CORSOrigin)
	}
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// MySQLDSN returns the Data Source Name for the MySQL connection
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
