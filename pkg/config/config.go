package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/warden/pkg/observability"
)

// Token store backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

// DefaultAPIURL is the Directory base URL used when WARDEN_API_URL is unset
const DefaultAPIURL = "http://localhost:8000/api"

// Config holds all application configuration
type Config struct {
	Directory     DirectoryConfig
	Session       SessionConfig
	TokenStore    TokenStoreConfig
	Console       ConsoleConfig
	Observability ObservabilityConfig
}

// DirectoryConfig holds the remote Directory settings
type DirectoryConfig struct {
	APIURL    string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	// RefreshLeeway is how long before access-token expiry the refresh fires
	RefreshLeeway time.Duration
}

// TokenStoreConfig selects and configures durable token storage
type TokenStoreConfig struct {
	Backend        string
	FilePath       string
	RedisURL       string
	RedisKeyPrefix string
	SQLDriver      string
	SQLDSN         string
}

// ConsoleConfig holds HTTP console settings
type ConsoleConfig struct {
	Host            string
	Port            string
	MetricsPort     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Login attempts allowed per client per minute; 0 disables throttling
	LoginRatePerMinute int
	LoginBurst         int
}

// Addr returns host:port for the console listener
func (c ConsoleConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// MetricsAddr returns host:port for the metrics listener
func (c ConsoleConfig) MetricsAddr() string {
	return c.Host + ":" + c.MetricsPort
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
	OTel           observability.OTelConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Directory:     loadDirectoryConfig(),
		Session:       loadSessionConfig(),
		TokenStore:    loadTokenStoreConfig(),
		Console:       loadConsoleConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadDirectoryConfig() DirectoryConfig {
	return DirectoryConfig{
		APIURL:    strings.TrimRight(getEnv("WARDEN_API_URL", DefaultAPIURL), "/"),
		Timeout:   getEnvDuration("WARDEN_HTTP_TIMEOUT", 15*time.Second),
		CacheTTL:  getEnvDuration("WARDEN_CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("WARDEN_CACHE_SIZE", 256),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		RefreshLeeway: getEnvDuration("WARDEN_REFRESH_LEEWAY", 60*time.Second),
	}
}

func loadTokenStoreConfig() TokenStoreConfig {
	return TokenStoreConfig{
		Backend:        strings.ToLower(getEnv("WARDEN_TOKEN_STORE", BackendFile)),
		FilePath:       getEnv("WARDEN_TOKEN_FILE", defaultTokenFile()),
		RedisURL:       getEnv("WARDEN_REDIS_URL", ""),
		RedisKeyPrefix: getEnv("WARDEN_REDIS_KEY_PREFIX", "warden:"),
		SQLDriver:      getEnv("WARDEN_SQL_DRIVER", "sqlite3"),
		SQLDSN:         getEnv("WARDEN_SQL_DSN", ""),
	}
}

func loadConsoleConfig() ConsoleConfig {
	return ConsoleConfig{
		Host:            getEnv("WARDEN_CONSOLE_HOST", "127.0.0.1"),
		Port:            getEnv("WARDEN_CONSOLE_PORT", "8088"),
		MetricsPort:     getEnv("WARDEN_METRICS_PORT", "9098"),
		ReadTimeout:     getEnvDuration("WARDEN_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("WARDEN_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("WARDEN_SHUTDOWN_TIMEOUT", 10*time.Second),

		LoginRatePerMinute: getEnvInt("WARDEN_LOGIN_RATE", 10),
		LoginBurst:         getEnvInt("WARDEN_LOGIN_BURST", 5),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       getEnv("WARDEN_LOG_LEVEL", "info"),
		LogFormat:      getEnv("WARDEN_LOG_FORMAT", "text"),
		MetricsEnabled: getEnvBool("WARDEN_METRICS_ENABLED", true),
		OTel: observability.OTelConfig{
			Enabled:        getEnvBool("WARDEN_OTEL_ENABLED", false),
			Endpoint:       getEnv("WARDEN_OTEL_ENDPOINT", "localhost:4317"),
			ServiceName:    getEnv("WARDEN_OTEL_SERVICE_NAME", "warden"),
			ServiceVersion: getEnv("WARDEN_OTEL_SERVICE_VERSION", "dev"),
			Insecure:       getEnvBool("WARDEN_OTEL_INSECURE", true),
		},
	}
}

// defaultTokenFile places the token file under the user config directory
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "warden", "tokens.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.Directory.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid API URL: %q", c.Directory.APIURL)
	}
	if c.Directory.Timeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive")
	}
	if c.Directory.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative")
	}
	if c.Session.RefreshLeeway < 0 {
		return fmt.Errorf("refresh leeway must not be negative")
	}

	switch c.TokenStore.Backend {
	case BackendMemory:
	case BackendFile:
		if c.TokenStore.FilePath == "" {
			return fmt.Errorf("token file path is required for file token store")
		}
	case BackendRedis:
		if c.TokenStore.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis token store")
		}
	case BackendSQL:
		if c.TokenStore.SQLDSN == "" {
			return fmt.Errorf("SQL DSN is required for sql token store")
		}
		if c.TokenStore.SQLDriver != "sqlite3" && c.TokenStore.SQLDriver != "postgres" {
			return fmt.Errorf("invalid SQL driver: %s (must be sqlite3 or postgres)", c.TokenStore.SQLDriver)
		}
	default:
		return fmt.Errorf("invalid token store: %s (must be file, redis, sql, or memory)", c.TokenStore.Backend)
	}

	if c.Console.Port == "" {
		return fmt.Errorf("console port is required")
	}
	if c.Observability.MetricsEnabled && c.Console.Port == c.Console.MetricsPort {
		return fmt.Errorf("console port and metrics port must be different")
	}
	if c.Console.LoginRatePerMinute < 0 || c.Console.LoginBurst < 0 {
		return fmt.Errorf("login rate and burst must not be negative")
	}

	if c.Observability.OTel.Enabled {
		if c.Observability.OTel.Endpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTel.ServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
