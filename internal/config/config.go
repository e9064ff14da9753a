// Package config loads and validates application configuration from the
// environment and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Addr is the address the HTTP server listens on (e.g. :8080).
	Addr string `mapstructure:"ADDR"`
	// DatabaseDSN is the Postgres connection string.
	DatabaseDSN string `mapstructure:"DATABASE_DSN"`
	// AuthSecret is the symmetric key used to sign bearer tokens.
	// Required; there is no default and startup fails without it.
	AuthSecret string `mapstructure:"AUTH_SECRET"`
	// BcryptCost is the bcrypt work factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SessionTimeout is the sliding inactivity window (e.g. "5m").
	SessionTimeout string `mapstructure:"SESSION_TIMEOUT"`
	// TokenTTL is the bearer token lifetime (e.g. "24h").
	TokenTTL string `mapstructure:"TOKEN_TTL"`
	// RememberTTL is the persistent-login token lifetime (e.g. "720h").
	RememberTTL string `mapstructure:"REMEMBER_TTL"`
	// StorageTimeout bounds individual database calls (e.g. "5s").
	StorageTimeout string `mapstructure:"STORAGE_TIMEOUT"`
	// SecureCookies marks cookies Secure; set when deployed over TLS.
	SecureCookies bool `mapstructure:"SECURE_COOKIES"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Missing .env is ignored; env vars override .env. The auth
// secret is required and its absence is a startup error, never a default.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_TIMEOUT", "5m")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("REMEMBER_TTL", "720h") // 30 days
	v.SetDefault("STORAGE_TIMEOUT", "5s")
	v.SetDefault("SECURE_COOKIES", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("config: ADDR must be set")
	}
	if cfg.AuthSecret == "" {
		return nil, errors.New("config: AUTH_SECRET must be set")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// SessionTimeoutDuration parses SessionTimeout. Returns 5m if unset or invalid.
func (c *Config) SessionTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// TokenTTLDuration parses TokenTTL. Returns 24h if unset or invalid.
func (c *Config) TokenTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// RememberTTLDuration parses RememberTTL. Returns 720h if unset or invalid.
func (c *Config) RememberTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.RememberTTL)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// StorageTimeoutDuration parses StorageTimeout. Returns 5s if unset or invalid.
func (c *Config) StorageTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.StorageTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}
