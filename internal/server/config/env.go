package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GOPHACCOUNT"

// newEnv returns a viper instance that resolves key "database_dsn" from
// GOPHACCOUNT_DATABASE_DSN and so on. Empty variables count as unset.
func newEnv(keys ...string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// parseEnv overlays GOPHACCOUNT_* environment variables, which take
// precedence over every other source.
func parseEnv(config *Config) error {
	texts := map[string]*string{
		"endpoint_addr_http": &config.EndpointAddrHTTP,
		"database_dsn":       &config.DatabaseDSN,
		"secret_key":         &config.SecretKey,
		"log_level":          &config.LogLevel,
	}
	durations := map[string]*time.Duration{
		"access_token_validity_duration": &config.AccessTokenValidityDuration,
		"reset_code_validity_duration":   &config.ResetCodeValidityDuration,
		"shutdown_timeout":               &config.ShutdownTimeout,
	}

	keys := []string{"allowed_origins"}
	for k := range texts {
		keys = append(keys, k)
	}
	for k := range durations {
		keys = append(keys, k)
	}

	v, err := newEnv(keys...)
	if err != nil {
		return fmt.Errorf("env: %w", err)
	}

	for k, dst := range texts {
		if v.IsSet(k) {
			*dst = v.GetString(k)
		}
	}

	if v.IsSet("allowed_origins") {
		config.AllowedOrigins = splitList(v.GetString("allowed_origins"))
	}

	// Parsed by hand: viper's GetDuration turns malformed values into 0.
	for k, dst := range durations {
		if !v.IsSet(k) {
			continue
		}
		d, err := time.ParseDuration(v.GetString(k))
		if err != nil {
			return fmt.Errorf("%s_%s: %w", envPrefix, strings.ToUpper(k), err)
		}
		*dst = d
	}
	return nil
}
