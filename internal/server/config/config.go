// Package config loads server configuration from environment variables
// following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/server/auth"
)

// Config holds runtime settings for the jobdeck server.
// All fields are populated from environment variables.
type Config struct {
	// Application settings.
	AppPort  int    `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Database (PostgreSQL, pgx).
	DatabaseDSN string `env:"DATABASE_DSN,required"`

	// Auth mode selector: "cognito" | "local" | "dev-noverify".
	AuthMode string `env:"AUTH_MODE" envDefault:"cognito"`

	// SecretKey signs and verifies HS256 tokens in local mode.
	SecretKey string `env:"SECRET_KEY"`

	// External issuer (cognito mode).
	CognitoRegion string `env:"COGNITO_REGION"`
	UserPoolID    string `env:"USER_POOL_ID"`
	AppClientID   string `env:"APP_CLIENT_ID"`

	// Object storage.
	S3Bucket          string `env:"S3_BUCKET_NAME"`
	S3Region          string `env:"S3_REGION"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	// S3BaseEndpoint overrides the AWS endpoint, e.g. for a local MinIO.
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
	// CDNDomain, when set, is preferred over the virtual-hosted bucket URL
	// for resolved object URLs.
	CDNDomain string `env:"S3_CLOUDFRONT_DOMAIN"`

	// Server timeouts.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses environment variables, validates mode-dependent requirements,
// and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Mode returns the parsed auth mode variant.
func (c *Config) Mode() (auth.Mode, error) {
	return auth.ParseMode(c.AuthMode)
}

// Issuer returns the external issuer URL derived from region and pool id.
func (c *Config) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.CognitoRegion, c.UserPoolID)
}

// JWKSURL returns the issuer's published key-set endpoint.
func (c *Config) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

// Validate checks mode-dependent required settings. Failures are
// configuration errors: fatal at startup, never recoverable per-request.
func (c *Config) Validate() error {
	mode, err := c.Mode()
	if err != nil {
		return err
	}

	switch mode {
	case auth.ModeLocalSymmetric:
		if c.SecretKey == "" {
			return fmt.Errorf("%w: SECRET_KEY is required in local auth mode", common.ErrConfiguration)
		}
	case auth.ModeCognito:
		if c.CognitoRegion == "" || c.UserPoolID == "" || c.AppClientID == "" {
			return fmt.Errorf("%w: COGNITO_REGION, USER_POOL_ID and APP_CLIENT_ID are required in cognito auth mode", common.ErrConfiguration)
		}
	}

	if c.S3Bucket == "" || c.S3Region == "" {
		return fmt.Errorf("%w: S3_BUCKET_NAME and S3_REGION are required", common.ErrConfiguration)
	}
	return nil
}
