// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"5001"`

	// Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL,required"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Error reporting. Empty disables Sentry.
	SentryDSN string `env:"SENTRY_DSN" envDefault:""`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// JWT verification. Tokens are issued by the external auth service.
	JWTSecret   string `env:"JWT_SECRET,required"`
	JWTIssuer   string `env:"JWT_ISSUER" envDefault:""`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:""`

	// Rate limiting
	RateLimitEnabled       bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitUserPerMinute int  `env:"RATE_LIMIT_USER_PER_MINUTE" envDefault:"120"`
	RateLimitUserBurst     int  `env:"RATE_LIMIT_USER_BURST" envDefault:"30"`
	RateLimitIPRPS         int  `env:"RATE_LIMIT_IP_RPS" envDefault:"10"`
	RateLimitIPBurst       int  `env:"RATE_LIMIT_IP_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,https://lifeguard-vq69.onrender.com,https://lifeguard-vert.vercel.app,https://lifeguard-node.onrender.com"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Email. An empty API key switches to the logging mailer.
	SendGridAPIKey string `env:"SENDGRID_API_KEY" envDefault:""`
	EmailFrom      string `env:"EMAIL_FROM" envDefault:"noreply@lifeguard.app"`
	EmailFromName  string `env:"EMAIL_FROM_NAME" envDefault:"LifeGuard"`
	FrontendURL    string `env:"FRONTEND_URL" envDefault:"https://lifeguard-vert.vercel.app"`

	// Emergency alerts
	AlertSigningSecret     string `env:"ALERT_SIGNING_SECRET" envDefault:""`
	AmbulanceServiceNumber string `env:"AMBULANCE_SERVICE_NUMBER" envDefault:""`

	// Health tips upstream
	MyHealthfinderBaseURL string        `env:"MYHEALTHFINDER_BASE_URL" envDefault:"https://odphp.health.gov/myhealthfinder/api/v4"`
	MyHealthfinderRPS     int           `env:"MYHEALTHFINDER_RPS" envDefault:"5"`
	HealthTipsCacheTTL    time.Duration `env:"HEALTH_TIPS_CACHE_TTL" envDefault:"1h"`

	// Medication reminders
	ReminderCron          string        `env:"REMINDER_CRON" envDefault:"0 0 * * *"`
	ReminderPollInterval  time.Duration `env:"REMINDER_POLL_INTERVAL" envDefault:"15s"`
	ReminderBatchSize     int           `env:"REMINDER_BATCH_SIZE" envDefault:"50"`
	ReminderWorkerEnabled bool          `env:"REMINDER_WORKER_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// EmailConfigured reports whether outbound email goes through SendGrid.
func (c *Config) EmailConfigured() bool {
	return c.SendGridAPIKey != ""
}

// AlertSecret returns the key used to sign alert acknowledgement links.
func (c *Config) AlertSecret() string {
	if c.AlertSigningSecret != "" {
		return c.AlertSigningSecret
	}
	return c.JWTSecret
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given files into the process
// environment without overriding values already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
