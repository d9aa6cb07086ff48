// Package config loads the bourse configuration from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Rhymond/go-money"
	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultAddr        = "localhost:8080"
	DefaultCurrency    = "USD"
	DefaultMaxUploadMB = 10
)

// Config holds all application configuration.
type Config struct {
	Gemini struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`

		// CacheDir keeps Gemini answers for the day, empty disables the cache.
		CacheDir string `yaml:"cache_dir"`
	} `yaml:"gemini"`
	Server struct {
		Addr        string `yaml:"addr"`
		SecretKey   string `yaml:"secret_key"`
		MaxUploadMB int64  `yaml:"max_upload_mb"`
	} `yaml:"server"`
	// Currency is the ISO code of the prices in the analyzed files.
	Currency string `yaml:"currency"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
//
// A missing file is not an error, an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides, GOOGLE_API_KEY wins like in the genai client.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("BOURSE_GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("BOURSE_CACHE_DIR"); v != "" {
		cfg.Gemini.CacheDir = v
	}
	if v := os.Getenv("BOURSE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BOURSE_SECRET_KEY"); v != "" {
		cfg.Server.SecretKey = v
	}
	if v := os.Getenv("BOURSE_MAX_UPLOAD_MB"); v != "" {
		if mb, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadMB = mb
		}
	}
	if v := os.Getenv("BOURSE_CURRENCY"); v != "" {
		cfg.Currency = v
	}

	// Defaults
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = DefaultModel
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = DefaultMaxUploadMB
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
//
// The Gemini API key is optional: without it no insight is generated.
func (c *Config) Validate() error {
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("currency %q is not a known ISO 4217 code", c.Currency)
	}
	return nil
}

// HasInsights reports whether a Gemini API key is configured.
func (c *Config) HasInsights() bool { return c.Gemini.APIKey != "" }
