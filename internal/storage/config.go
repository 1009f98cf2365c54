package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Credential backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	BaseURL           string  `json:"baseURL"`
	PageSize          int     `json:"pageSize"`
	TagPageSize       int     `json:"tagPageSize"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	TimeoutSeconds    int     `json:"timeoutSeconds"`
	CredentialBackend string  `json:"credentialBackend"`
	LogLevel          string  `json:"logLevel"`
	MetricsAddr       string  `json:"metricsAddr"` // empty = metrics endpoint disabled
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://localhost:8080",
		PageSize:          10,
		TagPageSize:       10,
		RequestsPerSecond: 10,
		TimeoutSeconds:    30,
		CredentialBackend: BackendFile,
		LogLevel:          "info",
	}
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
// Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			applyEnv(&config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.PageSize <= 0 {
		config.PageSize = defaults.PageSize
	}
	if config.TagPageSize <= 0 {
		config.TagPageSize = defaults.TagPageSize
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if config.CredentialBackend == "" {
		config.CredentialBackend = defaults.CredentialBackend
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	applyEnv(&config)
	return &config, nil
}

// applyEnv overrides config values from BMR_* environment variables.
func applyEnv(config *Config) {
	if v := os.Getenv("BMR_BASE_URL"); v != "" {
		config.BaseURL = v
	}
	if v := os.Getenv("BMR_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("BMR_METRICS_ADDR"); v != "" {
		config.MetricsAddr = v
	}
	if v := os.Getenv("BMR_CREDENTIAL_BACKEND"); v != "" {
		config.CredentialBackend = v
	}
	if v := os.Getenv("BMR_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.PageSize = n
		}
	}
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmr/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns the default log path: ~/.config/bmr/bmr.log
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bmr.log"), nil
}
