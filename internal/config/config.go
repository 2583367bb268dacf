package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	AllowOrigins  string
	LogLevel      string
	ReqTimeoutSec int

	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBPath            string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieSecure    bool

	StoreTimeout      time.Duration
	LockRetries       int
	ReconcileSchedule string
	ReconcileRepair   bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func atob(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		AllowOrigins:  getenv("ALLOW_ORIGINS", "*"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		ReqTimeoutSec: atoi("REQUEST_TIMEOUT_SECONDS", 30),

		DBDriver:          getenv("DB_DRIVER", "postgres"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBName:            getenv("DB_NAME", "ledger"),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBPath:            getenv("DB_PATH", "ledger.db"),
		DBMaxOpenConns:    atoi("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    atoi("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBLogLevel:        getenv("DB_LOG_LEVEL", "error"),

		JWTSecret:       getenv("JWT_SECRET", ""),
		AccessTokenTTL:  duration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: duration("REFRESH_TOKEN_TTL", 24*time.Hour),
		CookieSecure:    atob("COOKIE_SECURE", false),

		StoreTimeout:      duration("STORE_TIMEOUT", 5*time.Second),
		LockRetries:       atoi("LOCK_RETRIES", 3),
		ReconcileSchedule: getenv("RECONCILE_SCHEDULE", ""),
		ReconcileRepair:   atob("RECONCILE_REPAIR", false),
	}
}

// DSN builds the postgres connection URL.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}
