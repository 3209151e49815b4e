package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Notifications NotificationsConfig
	Bootstrap     BootstrapConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// NotificationsConfig bounds how often an unread notification is re-surfaced.
type NotificationsConfig struct {
	MaxPresentations int
	JitterMin        time.Duration
	JitterMax        time.Duration
}

// BootstrapConfig seeds the initial superadmin when the users table is empty.
// The password is read from env only; it is hashed immediately and never stored.
type BootstrapConfig struct {
	SuperAdminUsername string
	SuperAdminPassword string
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Validate rejects settings the notification protocol cannot run with.
func (c NotificationsConfig) Validate() error {
	if c.MaxPresentations <= 0 {
		return fmt.Errorf("max presentations must be positive, got %d", c.MaxPresentations)
	}
	if c.JitterMin <= 0 || c.JitterMax < c.JitterMin {
		return fmt.Errorf("jitter bounds invalid: min=%s max=%s", c.JitterMin, c.JitterMax)
	}
	return nil
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "8"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "autostock"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		Notifications: NotificationsConfig{
			MaxPresentations: getEnvInt("NOTIFY_MAX_PRESENTATIONS", 3),
			JitterMin:        time.Duration(getEnvInt("NOTIFY_JITTER_MIN_SEC", 10)) * time.Second,
			JitterMax:        time.Duration(getEnvInt("NOTIFY_JITTER_MAX_SEC", 20)) * time.Second,
		},
		Bootstrap: BootstrapConfig{
			SuperAdminUsername: getEnv("SUPERADMIN_USERNAME", "superadmin"),
			SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
		},
	}
	if err := cfg.Notifications.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
