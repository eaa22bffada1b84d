package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "dev-secret-change-me"

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDB                 string
	PostgresURL             string
	RedisURL                string
	JWTSecret               string
	JWTTTL                  time.Duration
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	MetricsPort             string
	AllowedOrigins          []string
	AuthRateLimit           int
	AuthRateWindow          time.Duration
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8000"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "nano_social"),
		PostgresURL:             getEnv("POSTGRES_URL", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:                  getDuration("JWT_TTL", 15*24*time.Hour),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		AllowedOrigins:          splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		AuthRateLimit:           getInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:          getDuration("AUTH_RATE_WINDOW", time.Minute),
	}
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// FirebaseEnabled reports whether Firebase credentials were configured.
func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseCredentialsPath != ""
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.IsProduction() {
		if c.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be changed in production")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production, got %d", len(c.JWTSecret))
		}
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI must be set")
	}
	if c.FirebaseEnabled() && c.FirebaseStorageBucket == "" {
		return errors.New("FIREBASE_STORAGE_BUCKET must be set when Firebase is configured")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
