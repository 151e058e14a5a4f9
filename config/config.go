// Package config loads the application configuration from environment
// variables (optionally seeded from a .env file).
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/littlebump/sonobot/utils"
)

// Config represents the complete application configuration.
type Config struct {
	Server        ServerConfig
	Line          LineConfig
	Gemini        GeminiConfig
	OpenRouter    OpenRouterConfig
	Database      *DatabaseConfig // Optional: nil disables analysis recording.
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LineConfig holds LINE Messaging API configuration.
type LineConfig struct {
	ChannelSecret      string `validate:"required"`
	ChannelAccessToken string `validate:"required"`
	APIBase            string
	BlobBase           string
	Timeout            time.Duration
}

// GeminiConfig holds the primary vision provider configuration, including
// the rotating key pool and its cooldown policy.
type GeminiConfig struct {
	// APIKeys is the ordered key pool. Empty disables the primary path.
	APIKeys []string

	Model   string
	BaseURL string
	Timeout time.Duration

	// KeyCooldown rests a single key after a rate-limit response.
	KeyCooldown time.Duration

	// GlobalCooldown rests the whole pool after full exhaustion.
	GlobalCooldown time.Duration

	// MinRequestInterval spaces outbound Gemini calls process-wide.
	MinRequestInterval time.Duration

	// MaxRotationRounds is the number of full pool passes per request.
	MaxRotationRounds int `validate:"gte=1"`
}

// OpenRouterConfig holds the fallback provider configuration.
type OpenRouterConfig struct {
	// APIKey is the single fallback credential. Empty disables fallback.
	APIKey string

	// Models is the ordered list of model identifiers to try.
	Models []string

	BaseURL string
	Timeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration, built from DATABASE_URL.
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ObservabilityConfig holds logging configuration.
type ObservabilityConfig struct {
	LogLevel  string `validate:"required"`
	LogFormat string `validate:"oneof=json console"`
}

// New creates a Config by loading environment variables. A .env file in the
// working directory is loaded first when present.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Line: LineConfig{
			ChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
			ChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
			APIBase:            getEnv("LINE_API_BASE", ""),
			BlobBase:           getEnv("LINE_BLOB_BASE", ""),
			Timeout:            getEnvAsDuration("LINE_TIMEOUT", 30*time.Second),
		},
		Gemini: GeminiConfig{
			APIKeys:            getEnvAsList("GEMINI_API_KEYS", getEnv("GEMINI_API_KEY", "")),
			Model:              getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
			BaseURL:            getEnv("GEMINI_BASE_URL", ""),
			Timeout:            getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			KeyCooldown:        getEnvAsDuration("GEMINI_KEY_COOLDOWN", 60*time.Second),
			GlobalCooldown:     getEnvAsDuration("GEMINI_GLOBAL_COOLDOWN", 120*time.Second),
			MinRequestInterval: getEnvAsDuration("GEMINI_MIN_REQUEST_INTERVAL", 2*time.Second),
			MaxRotationRounds:  getEnvAsInt("GEMINI_MAX_ROTATION_ROUNDS", 3),
		},
		OpenRouter: OpenRouterConfig{
			APIKey: getEnv("OPENROUTER_API_KEY", ""),
			Models: getEnvAsList("OPENROUTER_MODELS",
				"google/gemini-flash-1.5,meta-llama/llama-3.2-11b-vision-instruct:free,qwen/qwen-2-vl-7b-instruct:free"),
			BaseURL: getEnv("OPENROUTER_BASE_URL", ""),
			Timeout: getEnvAsDuration("OPENROUTER_TIMEOUT", 60*time.Second),
		},
		Database: loadDatabaseConfig(),
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}

	if c.Gemini.KeyCooldown <= 0 || c.Gemini.GlobalCooldown <= 0 {
		return fmt.Errorf("gemini cooldowns must be positive")
	}
	if c.Gemini.MinRequestInterval < 0 {
		return fmt.Errorf("gemini min request interval must not be negative")
	}
	if len(c.OpenRouter.Models) == 0 && c.OpenRouter.APIKey != "" {
		return fmt.Errorf("openrouter key configured but no models listed")
	}

	return nil
}

// HasPrimaryProvider reports whether the Gemini key pool is non-empty.
func (c *Config) HasPrimaryProvider() bool {
	return len(c.Gemini.APIKeys) > 0
}

// HasFallbackProvider reports whether an OpenRouter key is configured.
func (c *Config) HasFallbackProvider() bool {
	return c.OpenRouter.APIKey != ""
}

// IsProduction returns true if running in a production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Address returns the HTTP server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return c.ConnectionString
}

// LogString returns a safe connection description for logging (no password).
func (c *DatabaseConfig) LogString() string {
	u, err := url.Parse(c.ConnectionString)
	if err != nil {
		return "host=<from DATABASE_URL>"
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
}

// loadDatabaseConfig builds database config from DATABASE_URL.
// Returns nil when not set (analysis recording disabled).
func loadDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil
	}
	return &DatabaseConfig{
		ConnectionString: dbURL,
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT (default: 8000).
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// Accept both Go duration strings ("90s") and bare seconds ("90").
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated env value, trimming whitespace and
// dropping empty entries.
func getEnvAsList(key, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
