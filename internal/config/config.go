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

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Session stores.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Document access policies.
const (
	AccessPolicyLegacy = "legacy"
	AccessPolicyOwner  = "owner"
)

// MinSessionSecretLength is the shortest accepted token signing secret.
const MinSessionSecretLength = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Document and user storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`

	// Login sessions
	SessionStore        string        `env:"SESSION_STORE" envDefault:"redis"`
	RedisURL            string        `env:"REDIS_URL"`
	RedisNamespace      string        `env:"REDIS_NAMESPACE" envDefault:"pubdocs"`
	RedisPoolSize       int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	SessionSecret       string        `env:"SESSION_SECRET,required"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"pub_session"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	// Authentication
	AuthMinDuration     time.Duration `env:"AUTH_MIN_DURATION" envDefault:"200ms"`
	PasswordMemoryKiB   uint32        `env:"PASSWORD_MEMORY_KIB" envDefault:"65536"`
	PasswordIterations  uint32        `env:"PASSWORD_ITERATIONS" envDefault:"3"`
	PasswordParallelism uint8         `env:"PASSWORD_PARALLELISM" envDefault:"4"`

	// Documents
	DocumentAccessPolicy string `env:"DOCUMENT_ACCESS_POLICY" envDefault:"legacy"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Login rate limiting, per client IP
	RateLimitLoginEnabled bool `env:"RATE_LIMIT_LOGIN_ENABLED" envDefault:"true"`
	RateLimitLoginRPM     int  `env:"RATE_LIMIT_LOGIN_RPM" envDefault:"10"`
	RateLimitLoginBurst   int  `env:"RATE_LIMIT_LOGIN_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	// Browsers send the session cookie cross-origin, so wildcards are refused.
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
	CORSMaxAge         time.Duration `env:"CORS_MAX_AGE" envDefault:"10m"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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

// Validate checks combinations the struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.SessionStore {
	case SessionStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when SESSION_STORE=redis"))
		}
	case SessionStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}

	if len(c.SessionSecret) < MinSessionSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength))
	}

	switch c.DocumentAccessPolicy {
	case AccessPolicyLegacy, AccessPolicyOwner:
	default:
		errs = append(errs, fmt.Errorf("unknown DOCUMENT_ACCESS_POLICY %q", c.DocumentAccessPolicy))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.PasswordIterations == 0 || c.PasswordParallelism == 0 || c.PasswordMemoryKiB < 8*uint32(c.PasswordParallelism) {
		errs = append(errs, errors.New("password hashing parameters are out of range"))
	}

	for _, origin := range c.GetCORSAllowedOrigins() {
		if strings.Contains(origin, "*") {
			errs = append(errs, fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q: wildcards cannot be combined with session cookies", origin))
		} else if !strings.HasPrefix(origin, "https://") && !strings.HasPrefix(origin, "http://") {
			errs = append(errs, fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q: must start with http:// or https://", origin))
		}
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file, parses environment variables and
// validates the result. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", p, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
