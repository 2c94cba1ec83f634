// Package config loads client configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	APIBaseURL     string   `yaml:"api_base_url"`
	RequestTimeout Duration `yaml:"request_timeout"`
	StateDir       string   `yaml:"state_dir"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
}

func Default() Config {
	return Config{
		APIBaseURL:     "https://app-backend-ruby.vercel.app/api",
		RequestTimeout: Duration(30 * time.Second),
		StateDir:       defaultStateDir(),
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func defaultStateDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "shopfront")
	}
	return ".shopfront"
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(defaultStateDir(), "config.yaml")
}

// Load reads path (or the default location) over the built-in
// defaults, then applies environment overrides. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("config: api_base_url is empty")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Default().RequestTimeout
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = getEnv("SHOPFRONT_API_URL", cfg.APIBaseURL)
	cfg.StateDir = getEnv("SHOPFRONT_STATE_DIR", cfg.StateDir)
	cfg.LogLevel = getEnv("SHOPFRONT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("SHOPFRONT_LOG_FORMAT", cfg.LogFormat)
	if v := os.Getenv("SHOPFRONT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = Duration(parsed)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
