// Package config loads client configuration from an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string      `yaml:"environment"`
	API         APIConfig   `yaml:"api"`
	Log         LogConfig   `yaml:"log"`
	Watch       WatchConfig `yaml:"watch"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

type LogConfig struct {
	Level    string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	FilePath string `yaml:"file_path"`
}

type WatchConfig struct {
	Dir            string `yaml:"dir"`
	DebounceMillis int    `yaml:"debounce_ms" validate:"gte=0"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Environment: "development",
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 120,
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			DebounceMillis: 500,
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Environment = getEnv("GO_ENV", cfg.Environment)
	cfg.API.BaseURL = getEnv("DOCINSIGHT_API_URL", cfg.API.BaseURL)
	cfg.API.TimeoutSeconds = getEnvAsInt("DOCINSIGHT_HTTP_TIMEOUT", cfg.API.TimeoutSeconds)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.FilePath = getEnv("LOG_FILE_PATH", cfg.Log.FilePath)
	cfg.Watch.Dir = getEnv("DOCINSIGHT_WATCH_DIR", cfg.Watch.Dir)
	cfg.Watch.DebounceMillis = getEnvAsInt("DOCINSIGHT_WATCH_DEBOUNCE_MS", cfg.Watch.DebounceMillis)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsProd reports whether the client runs in production mode.
func (c *Config) IsProd() bool {
	return c.Environment == "production"
}

// Timeout is the HTTP transport timeout. Zero means none.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Debounce is the drop-folder event debounce window.
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
