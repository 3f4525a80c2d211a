// Package config handles configuration for the account server, including
// defaults, a JSON overlay, command-line flags and environment variables.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the account server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Required.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required.
//   - AccessTokenValidityDuration: lifetime of issued bearer tokens.
//   - ResetCodeValidityDuration: lifetime of a password reset code.
//   - AllowedOrigins: CORS allow-list.
//   - ShutdownTimeout: how long in-flight requests may run after a stop signal.
//   - LogLevel: zap level name.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	ResetCodeValidityDuration   time.Duration
	AllowedOrigins              []string
	ShutdownTimeout             time.Duration
	LogLevel                    string
}

var (
	ErrMissingDatabaseDSN = errors.New("database DSN is required")
	ErrMissingSecretKey   = errors.New("secret key is required")
)

// LoadDefaults populates Config with defaults. Credentials have no default
// and must come from a file, a flag or the environment.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3002"
	c.AccessTokenValidityDuration = time.Hour
	c.ResetCodeValidityDuration = 15 * time.Minute
	c.AllowedOrigins = []string{"http://localhost", "http://192.168.43.192"}
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return ErrMissingDatabaseDSN
	}
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags and finally the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
