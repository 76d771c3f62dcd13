package utils

import (
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Configuration keys understood by docchat
const (
	KeyBackendURL       = "BACKEND_URL"
	KeyRequestTimeout   = "REQUEST_TIMEOUT_SECONDS"
	KeyStoreDriver      = "STORE_DRIVER"
	KeyStorePath        = "STORE_PATH"
	KeyMySQLUsername    = "MYSQL_USERNAME"
	KeyMySQLPassword    = "MYSQL_PASSWORD"
	KeyMySQLHost        = "MYSQL_HOST"
	KeyMySQLPort        = "MYSQL_PORT"
	KeyMySQLDatabase    = "MYSQL_DATABASE"
	KeyCallbackPort     = "CALLBACK_PORT"
	KeyCORSOrigins      = "CORS_ALLOWED_ORIGINS"
	KeyAccessURLRefresh = "ACCESS_URL_REFRESH"
	KeyGreetingEnabled  = "GREETING_ENABLED"
	KeyLogLevel         = "LOG_LEVEL"
	KeyLogFormat        = "LOG_FORMAT"
)

// defaults are applied for keys that are absent from both the env files and the environment
var defaults = map[string]string{
	KeyBackendURL:       "http://localhost:8000/api",
	KeyRequestTimeout:   "120",
	KeyStoreDriver:      "sqlite",
	KeyMySQLPort:        "3306",
	KeyCallbackPort:     "3000",
	KeyCORSOrigins:      "*",
	KeyAccessURLRefresh: "@every 10m",
	KeyGreetingEnabled:  "true",
	KeyLogLevel:         "warn",
	KeyLogFormat:        "console",
}

// Config is a thread-safe view over environment-provided settings
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewConfig creates a new Config from the provided key-value pairs. Defaults
// fill any key that is not present.
func NewConfig(values map[string]string) *Config {
	config := &Config{
		values: make(map[string]string, len(defaults)+len(values)),
	}

	maps.Copy(config.values, defaults)
	maps.Copy(config.values, values)

	return config
}

// NewConfigFromEnv loads the given .env files and the process environment.
// The returned config is usable even when err reports an unreadable file.
func NewConfigFromEnv(files ...string) (*Config, error) {
	values, err := LoadEnv(files...)
	return NewConfig(values), err
}

// Get retrieves a configuration value by key, or "" if the key is unset
func (c *Config) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// GetWithDefault retrieves a configuration value by key with a fallback default
func (c *Config) GetWithDefault(key, defaultValue string) string {
	if value := c.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBool retrieves a configuration value as a boolean
// Returns false if key doesn't exist or cannot be parsed as boolean
func (c *Config) GetBool(key string) bool {
	value := strings.ToLower(strings.TrimSpace(c.Get(key)))

	switch value {
	case "yes", "on", "enabled":
		return true
	case "no", "off", "disabled", "":
		return false
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}

// GetInt retrieves a configuration value as an integer, or 0 if it cannot be parsed
func (c *Config) GetInt(key string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(c.Get(key)))
	if err != nil {
		return 0
	}
	return parsed
}

// Set modifies a configuration value
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Has checks if a configuration key exists
func (c *Config) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.values[key]
	return exists
}

/** Typed accessors **/

// BackendURL returns the Remote API base URL without a trailing slash
func (c *Config) BackendURL() string {
	return strings.TrimRight(c.GetWithDefault(KeyBackendURL, defaults[KeyBackendURL]), "/")
}

// RequestTimeout returns the per-request timeout for Remote API calls
func (c *Config) RequestTimeout() time.Duration {
	seconds := c.GetInt(KeyRequestTimeout)
	if seconds <= 0 {
		seconds = 120
	}
	return time.Duration(seconds) * time.Second
}

// StorePath returns the sqlite file used by the durable store
func (c *Config) StorePath() string {
	if path := c.Get(KeyStorePath); path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), "state.db")
}

// GreetingEnabled reports whether an assistant greeting is seeded on bind
func (c *Config) GreetingEnabled() bool {
	return c.GetBool(KeyGreetingEnabled)
}

// ConfigDir returns the per-user directory docchat keeps its state in
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "docchat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "docchat")
}
