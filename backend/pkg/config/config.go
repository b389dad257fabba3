package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "growth-graph/backend/pkg/errors"
)

// Store drivers
const (
	StoreNeo4j    = "neo4j"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// devJWTSecret is used only when ENV=development and JWT_SECRET is unset.
const devJWTSecret = "growth-graph-dev-secret"

// Config holds all application configuration
type Config struct {
	// App
	Port      string
	Env       string
	LogLevel  string
	ClientURL string

	// Storage
	StoreDriver    string
	RequestTimeout time.Duration

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Postgres
	DatabaseURL string

	// Auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Profile photo uploads (S3-compatible, disabled when S3Bucket is empty)
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicURL  string
	S3PresignTTL time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		ClientURL:      getEnv("CLIENT_URL", "http://localhost:5173"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreNeo4j)),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", "password"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:     getEnvInt("BCRYPT_COST", 10),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),
		S3PresignTTL:   getEnvDuration("S3_PRESIGN_TTL", 15*time.Minute),
	}

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Port == "" {
		return apperrors.NewConfigMissingRequired("PORT")
	}
	switch c.StoreDriver {
	case StoreNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return apperrors.NewConfigMissingRequired("DATABASE_URL")
		}
	case StoreMemory:
		if c.IsProduction() {
			return apperrors.NewConfigValidationFailed("STORE_DRIVER", "memory store is not durable")
		}
	default:
		return apperrors.NewConfigValidationFailed("STORE_DRIVER", fmt.Sprintf("unknown driver %q", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		return apperrors.NewConfigMissingRequired("JWT_SECRET")
	}
	if c.TokenTTL <= 0 {
		return apperrors.NewConfigValidationFailed("TOKEN_TTL", "must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return apperrors.NewConfigValidationFailed("BCRYPT_COST", "must be between 4 and 31")
	}
	if c.PhotoUploadsEnabled() {
		if c.S3AccessKey == "" || c.S3SecretKey == "" {
			return apperrors.NewConfigMissingRequired("S3_ACCESS_KEY/S3_SECRET_KEY")
		}
		if c.S3PresignTTL <= 0 {
			return apperrors.NewConfigValidationFailed("S3_PRESIGN_TTL", "must be positive")
		}
	}
	return nil
}

// PhotoUploadsEnabled reports whether a bucket is configured for profile photos.
func (c *Config) PhotoUploadsEnabled() bool {
	return c.S3Bucket != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
