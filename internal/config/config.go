// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Port is the HTTP listen port.
	// Environment variable: PORT
	Port int `koanf:"PORT"`

	// DatabaseURL is the PostgreSQL connection string. Without it the server
	// only offers the stateless extraction endpoints.
	// Environment variable: DATABASE_URL
	DatabaseURL string `koanf:"DATABASE_URL"`

	// DBMaxConns caps the connection pool.
	// Environment variable: DB_MAX_CONNS
	DBMaxConns int `koanf:"DB_MAX_CONNS"`

	// JWTSecret signs auth tokens. Required when DatabaseURL is set.
	// Environment variable: JWT_SECRET
	JWTSecret string `koanf:"JWT_SECRET"`

	// JWTTTLHours is the token lifetime.
	// Environment variable: JWT_TTL_HOURS
	JWTTTLHours int `koanf:"JWT_TTL_HOURS"`

	// UploadLimitMB is the largest accepted request body.
	// Environment variable: UPLOAD_LIMIT_MB
	UploadLimitMB int `koanf:"UPLOAD_LIMIT_MB"`

	// OCRLanguage is passed to tesseract.
	// Environment variable: OCR_LANGUAGE
	OCRLanguage string `koanf:"OCR_LANGUAGE"`

	// StaticDir, when set, is served at / for the web client.
	// Environment variable: STATIC_DIR
	StaticDir string `koanf:"STATIC_DIR"`

	// RateLimitPerMinute applies per client IP to upload endpoints.
	// Environment variable: RATE_LIMIT_PER_MINUTE
	RateLimitPerMinute int `koanf:"RATE_LIMIT_PER_MINUTE"`

	// CORSOrigins is a comma-separated allow list.
	// Environment variable: CORS_ORIGINS
	CORSOrigins string `koanf:"CORS_ORIGINS"`
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	return FromKoanf(k)
}

// FromKoanf unmarshals an already loaded koanf instance and fills defaults.
func FromKoanf(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.DBMaxConns == 0 {
		c.DBMaxConns = 10
	}
	if c.JWTTTLHours == 0 {
		c.JWTTTLHours = 24
	}
	if c.UploadLimitMB == 0 {
		c.UploadLimitMB = 10
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = "eng"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.CORSOrigins == "" {
		c.CORSOrigins = "*"
	}
}

// Validate reports settings that make the server unable to start.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.DatabaseURL != "" && strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when DATABASE_URL is set"))
	}
	if c.UploadLimitMB < 1 {
		errs = append(errs, fmt.Errorf("UPLOAD_LIMIT_MB must be positive: %d", c.UploadLimitMB))
	}
	if c.JWTTTLHours < 1 {
		errs = append(errs, fmt.Errorf("JWT_TTL_HOURS must be positive: %d", c.JWTTTLHours))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// TokenTTL is the auth token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// UploadLimit is the body limit in bytes.
func (c *Config) UploadLimit() int {
	return c.UploadLimitMB << 20
}

// AllowedOrigins returns CORSOrigins in the form fiber's cors middleware expects.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
