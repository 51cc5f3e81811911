package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session modes
const (
	SessionModeToken      = "token"
	SessionModeIdentifier = "identifier"
)

// Config holds application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	CORS      CORSConfig
	Mail      MailConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	Port        string
	Host        string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// SessionConfig holds admin session configuration
type SessionConfig struct {
	Secret        string
	TTL           time.Duration
	Mode          string // "token" (signed JWT) or "identifier" (bare admin user id)
	CookieName    string
	AdminPassword string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// MailConfig holds the operator notification transport configuration
type MailConfig struct {
	Provider      string // "console", "smtp", "resend"
	ResendAPIKey  string
	SMTPHost      string
	SMTPPort      int
	Username      string
	Password      string
	FromEmail     string
	FromName      string
	OperatorEmail string
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level    string
	Format   string // "json" or "console"
	Output   string // "stdout", "stderr", "file"
	FilePath string
}

// RateLimitConfig holds the public booking endpoint throttle
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// CatalogConfig points at an optional price catalog override
type CatalogConfig struct {
	Path string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Nails X Lauren API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("DEBUG", false),
			Port:        getEnv("PORT", "8000"),
			Host:        getEnv("HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "sqlite:///./nailsxlauren.db"),
		},
		Session: SessionConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			TTL:           getEnvAsDuration("JWT_EXPIRES_IN", 10*time.Hour),
			Mode:          strings.ToLower(getEnv("SESSION_MODE", SessionModeToken)),
			CookieName:    getEnv("SESSION_COOKIE_NAME", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_HOSTS", []string{"*"}),
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			MaxAge:         86400,
		},
		Mail: MailConfig{
			Provider:      strings.ToLower(getEnv("MAIL_PROVIDER", "console")),
			ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
			SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
			Username:      getEnv("SMTP_USERNAME", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			FromEmail:     getEnv("EMAIL_FROM", "bookings@nailsxlauren.com"),
			FromName:      getEnv("EMAIL_FROM_NAME", "Nails X Lauren"),
			OperatorEmail: getEnv("OPERATOR_EMAIL", ""),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "json"),
			Output:   getEnv("LOG_OUTPUT", "stdout"),
			FilePath: getEnv("LOG_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 1),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 5),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", ""),
		},
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultCookieName(cfg.Session.Mode)
	}
	if cfg.Mail.OperatorEmail == "" {
		cfg.Mail.OperatorEmail = cfg.Mail.FromEmail
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultCookieName returns the cookie used by a session mode
func DefaultCookieName(mode string) string {
	if mode == SessionModeIdentifier {
		return "admin_session"
	}
	return "nxla_admin"
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	switch cfg.Session.Mode {
	case SessionModeToken:
		if len(cfg.Session.Secret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters")
		}
	case SessionModeIdentifier:
	default:
		return fmt.Errorf("SESSION_MODE must be %q or %q", SessionModeToken, SessionModeIdentifier)
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be greater than 0")
	}
	switch cfg.Mail.Provider {
	case "console":
	case "smtp":
		if cfg.Mail.SMTPHost == "" || cfg.Mail.Username == "" || cfg.Mail.Password == "" {
			return fmt.Errorf("MAIL_PROVIDER=smtp requires SMTP_HOST, SMTP_USERNAME and SMTP_PASSWORD")
		}
	case "resend":
		if cfg.Mail.ResendAPIKey == "" {
			return fmt.Errorf("MAIL_PROVIDER=resend requires RESEND_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER: %s", cfg.Mail.Provider)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// IsPostgres checks if the database URL is for PostgreSQL
func (c *DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://") ||
		strings.Contains(c.URL, "host=")
}

// GetSQLitePath extracts SQLite database path from URL
func (c *DatabaseConfig) GetSQLitePath() string {
	return strings.TrimPrefix(c.URL, "sqlite:///")
}
