package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BlobInline     = "inline"
	BlobCloudinary = "cloudinary"
)

type Config struct {
	// Server
	Port string `validate:"required"`
	Host string
	Env  string `validate:"oneof=development production test"`

	// MongoDB
	MongoURI     string `validate:"required"`
	DatabaseName string `validate:"required"`
	MongoTimeout int    `validate:"gte=1"`

	// JWT
	JWTSecret     string `validate:"required"`
	JWTExpiration int    `validate:"gte=1"` // hours

	AllowedOrigins    []string
	RateLimitRequests int `validate:"gte=1"`
	RateLimitWindow   int `validate:"gte=1"` // seconds
	LogLevel          string
	SiteConfig        string
	Timezone          string `validate:"required"`

	// Mail API; empty URL disables mail
	MailAPIURL string `validate:"omitempty,url"`
	MailAPIKey string
	MailFrom   string `validate:"omitempty,email"`
	PublicURL  string `validate:"omitempty,url"`

	// Attachments
	BlobBackend         string `validate:"oneof=inline cloudinary"`
	CloudinaryCloudName string `validate:"required_if=BlobBackend cloudinary"`
	CloudinaryAPIKey    string `validate:"required_if=BlobBackend cloudinary"`
	CloudinaryAPISecret string `validate:"required_if=BlobBackend cloudinary"`
	CloudinaryFolder    string
}

// Load reads the environment (and .env when present) and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Host:                getEnv("HOST", "0.0.0.0"),
		Env:                 getEnv("ENV", "development"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:        getEnv("DATABASE_NAME", "stichting_asha"),
		MongoTimeout:        getEnvAsInt("MONGO_TIMEOUT", 10),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpiration:       getEnvAsInt("JWT_EXPIRATION", 24),
		AllowedOrigins:      getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitRequests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:     getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SiteConfig:          getEnv("SITE_CONFIG", "site.yaml"),
		Timezone:            getEnv("TIMEZONE", "Europe/Amsterdam"),
		MailAPIURL:          getEnv("MAIL_API_URL", ""),
		MailAPIKey:          getEnv("MAIL_API_KEY", ""),
		MailFrom:            getEnv("MAIL_FROM", ""),
		PublicURL:           getEnv("PUBLIC_URL", "http://localhost:3000"),
		BlobBackend:         getEnv("BLOB_BACKEND", BlobInline),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "stichting-asha"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) MailEnabled() bool {
	return c.MailAPIURL != ""
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiration) * time.Hour
}

func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateLimitWindow) * time.Second
}

func (c *Config) MongoTimeoutDuration() time.Duration {
	return time.Duration(c.MongoTimeout) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
