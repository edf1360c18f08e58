// Package config loads the CLI configuration from environment variables and
// an optional .env file in the working directory.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/medlab/labadmin/pkg/criteria"
)

type Config struct {
	BackendURL string        `mapstructure:"BACKEND_URL"`
	Timeout    time.Duration `mapstructure:"TIMEOUT"`
	PageSize   int           `mapstructure:"PAGE_SIZE"`
	TokenPath  string        `mapstructure:"TOKEN_PATH"`
	LogLevel   string        `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("BACKEND_URL", "http://localhost:8000")
	v.SetDefault("TIMEOUT", "30s")
	v.SetDefault("PAGE_SIZE", criteria.DefaultPageSize)
	v.SetDefault("TOKEN_PATH", "") // "" -> ~/.labadmin/session.json
	v.SetDefault("LOG_LEVEL", "info")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("BACKEND_URL")
	v.BindEnv("TIMEOUT")
	v.BindEnv("PAGE_SIZE")
	v.BindEnv("TOKEN_PATH")
	v.BindEnv("LOG_LEVEL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir for token path: %w", err)
		}
		cfg.TokenPath = filepath.Join(home, ".labadmin", "session.json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable. The backend URL must be
// absolute and the page size one of the sizes the backend paginates by.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.BackendURL)
	}
	switch c.PageSize {
	case 30, 50, 100:
	default:
		return fmt.Errorf("PAGE_SIZE must be 30, 50 or 100, got %d", c.PageSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("TIMEOUT must be positive, got %s", c.Timeout)
	}
	return nil
}
