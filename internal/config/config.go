package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. STOCKDASH_SERVER_ADDR.
// POLYGON_API_KEY and SQLITE_PATH are also read without the prefix.
const EnvPrefix = "STOCKDASH"

// Provider names.
const (
	ProviderYahoo   = "yahoo"
	ProviderPolygon = "polygon"
	ProviderMock    = "mock"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string        `yaml:"addr" split_words:"true"`
		Debug          bool          `yaml:"debug" split_words:"true"`
		HandlerTimeout time.Duration `yaml:"handler_timeout" split_words:"true"`
	} `yaml:"server"`
	Provider struct {
		Name          string        `yaml:"name" split_words:"true"`
		PolygonAPIKey string        `yaml:"polygon_api_key" envconfig:"POLYGON_API_KEY"`
		Proxy         string        `yaml:"proxy" split_words:"true"`
		Timeout       time.Duration `yaml:"timeout" split_words:"true"`
	} `yaml:"provider"`
	Forecast struct {
		LookbackDays int `yaml:"lookback_days" split_words:"true"`
	} `yaml:"forecast"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database"`
}

// LoadDotEnv loads .env style files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && cfg.Provider.Proxy == "" {
		cfg.Provider.Proxy = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "127.0.0.1:8050"
	}
	if cfg.Server.HandlerTimeout == 0 {
		cfg.Server.HandlerTimeout = 30 * time.Second
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = ProviderYahoo
		if cfg.Provider.PolygonAPIKey != "" {
			cfg.Provider.Name = ProviderPolygon
		}
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 30 * time.Second
	}
	if cfg.Forecast.LookbackDays == 0 {
		cfg.Forecast.LookbackDays = 60
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderYahoo, ProviderMock:
	case ProviderPolygon:
		if c.Provider.PolygonAPIKey == "" {
			return fmt.Errorf("provider.polygon_api_key is required for the polygon provider")
		}
	default:
		return fmt.Errorf("provider.name %q is not one of yahoo, polygon, mock", c.Provider.Name)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.HandlerTimeout <= 0 {
		return fmt.Errorf("server.handler_timeout must be positive")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}
	if c.Forecast.LookbackDays < 2 {
		return fmt.Errorf("forecast.lookback_days must be at least 2")
	}
	return nil
}
